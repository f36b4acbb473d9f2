// Package validate provides the runtime checks the facades apply to their
// dynamically typed inputs, plus struct-tag validation for configuration
// records.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Func is the validation callback injected into facades. Value is the
// default implementation; any function with this shape can stand in.
type Func func(value any, name string, want reflect.Type, allowNil bool) error

// ErrNilExpectedType reports a misconfigured check rather than a bad value.
var ErrNilExpectedType = errors.New("validate: expected type must not be nil")

// MissingValueError reports a required value that was absent.
type MissingValueError struct {
	Name string
}

func (e *MissingValueError) Error() string {
	return e.Name + " must have value"
}

// WrongTypeError reports a value whose dynamic type did not match the
// expected one.
type WrongTypeError struct {
	Name string
	Want reflect.Type
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("%s must be %s", e.Name, e.Want)
}

// Value checks that value is present and of the wanted type. A nil
// interface, or a nil pointer, map, slice, channel, function or interface
// value, counts as absent and passes only when allowNil is set. Presence
// is checked before want, so a nil want only fails calls that reach the
// type comparison.
func Value(value any, name string, want reflect.Type, allowNil bool) error {
	if isNil(value) {
		if allowNil {
			return nil
		}
		return &MissingValueError{Name: name}
	}
	if want == nil {
		return ErrNilExpectedType
	}
	if reflect.TypeOf(value).AssignableTo(want) {
		return nil
	}
	return &WrongTypeError{Name: name, Want: want}
}

// Param checks a value against its declared type, where a pointer type
// declares the value optional: Param(v, "columns", reflect.TypeOf((*[]string)(nil)))
// accepts nil, []string and *[]string. Non-pointer declarations require a
// value.
func Param(value any, name string, declared reflect.Type) error {
	if declared == nil {
		return ErrNilExpectedType
	}
	want, allowNil := declared, false
	if declared.Kind() == reflect.Pointer {
		want, allowNil = declared.Elem(), true
	}
	if allowNil && !isNil(value) {
		if rv := reflect.ValueOf(value); rv.Kind() == reflect.Pointer {
			value = rv.Elem().Interface()
		}
	}
	return Value(value, name, want, allowNil)
}

var structValidator = validator.New()

// Struct runs go-playground tag validation and flattens the field errors
// into a single readable message.
func Struct(v any) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("field %q failed rule %q", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("validate: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("validate: %w", err)
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
