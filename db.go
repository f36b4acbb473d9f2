package supasaas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"reflect"
	"strconv"
	"strings"
	"syscall"

	supa "github.com/nedpals/supabase-go"

	"github.com/ashrobertsdragon/SupaSaaS/logging"
	"github.com/ashrobertsdragon/SupaSaaS/validate"
)

// Row is one table row, keyed by column name.
type Row map[string]any

// EmptyRows returns the sentinel row list the facades hand back on
// failure: a single empty row, structurally present but carrying no data.
// Callers distinguish it from a real result only by the log entry. A fresh
// slice is returned on every call so callers may mutate it.
func EmptyRows() []Row {
	return []Row{{}}
}

var (
	rowType = reflect.TypeOf(Row{})

	errResponseNoData = errors.New("response has no data")
)

// DB wraps the table CRUD operations. Write operations report success as a
// bool, read operations return the row list or the EmptyRows sentinel, and
// every failure is logged through the injected callback.
type DB struct {
	client   *Client
	log      logging.Func
	validate validate.Func
}

// NewDB builds the table facade on top of client.
func NewDB(client *Client, opts ...Option) *DB {
	s := newSettings(opts...)
	return &DB{client: client, log: s.log, validate: s.validate}
}

// InsertRow inserts data into table. It reports true only when the insert
// response carries data.
func (d *DB) InsertRow(ctx context.Context, table string, data Row, useServiceRole bool) bool {
	const action = "insert"
	fail := func(err error) bool {
		d.log("error", action, err, logging.F("data", data), logging.F("table_name", table))
		return false
	}

	if err := d.validate(data, "data", rowType, false); err != nil {
		return fail(err)
	}

	var raw json.RawMessage
	err := d.execute(ctx, useServiceRole, func(api *supa.Client) error {
		return api.DB.From(table).Insert(data).ExecuteWithContext(ctx, &raw)
	})
	if err != nil {
		return fail(err)
	}
	if isEmptyPayload(raw) {
		return fail(errResponseNoData)
	}
	return true
}

// DeleteRow deletes the rows matching the single-entry filter. It reports
// true when the delete call completes, without checking the response body.
func (d *DB) DeleteRow(ctx context.Context, table string, match map[string]any, matchType reflect.Type, useServiceRole bool) bool {
	const action = "delete"
	fail := func(err error) bool {
		d.log("error", action, err, logging.F("table_name", table), logging.F("match", match))
		return false
	}

	column, value, err := d.getFilter(match, matchType, action, table)
	if err != nil {
		return fail(err)
	}

	err = d.execute(ctx, useServiceRole, func(api *supa.Client) error {
		return api.DB.From(table).Delete().Eq(column, value).ExecuteWithContext(ctx, nil)
	})
	if err != nil {
		return fail(err)
	}
	return true
}

// SelectRow returns the rows matching the single-entry equality filter,
// restricted to columns when given (all columns otherwise). On any failure
// it returns EmptyRows.
func (d *DB) SelectRow(ctx context.Context, table string, match map[string]any, matchType reflect.Type, columns []string, useServiceRole bool) []Row {
	const action = "select"
	colStr := columnStr(columns)
	fail := func(err error) []Row {
		d.log("error", action, err, logging.F("table_name", table), logging.F("column_str", colStr), logging.F("match", match))
		return EmptyRows()
	}

	column, value, err := d.getFilter(match, matchType, action, table)
	if err != nil {
		return fail(err)
	}

	var raw json.RawMessage
	err = d.execute(ctx, useServiceRole, func(api *supa.Client) error {
		return api.DB.From(table).Select(selectColumns(columns)...).Eq(column, value).ExecuteWithContext(ctx, &raw)
	})
	if err != nil {
		return fail(err)
	}

	if isEmptyPayload(raw) {
		d.log("info", action, nil, logging.F("response", string(raw)))
		return fail(errResponseNoData)
	}
	rows, ok := d.validateResponse(raw, action, table, logging.F("column_str", colStr), logging.F("match", match))
	if !ok {
		return EmptyRows()
	}
	return rows
}

// SelectRows returns the rows whose filter column equals any element of
// the single filter entry's slice value. On any failure it returns
// EmptyRows.
func (d *DB) SelectRows(ctx context.Context, table string, match map[string]any, columns []string, useServiceRole bool) []Row {
	const action = "select rows"
	colStr := columnStr(columns)
	fail := func(err error) []Row {
		d.log("error", action, err, logging.F("table_name", table), logging.F("column_str", colStr), logging.F("match", match))
		return EmptyRows()
	}

	column, values, err := d.getListFilter(match, action, table)
	if err != nil {
		return fail(err)
	}

	var raw json.RawMessage
	err = d.execute(ctx, useServiceRole, func(api *supa.Client) error {
		return api.DB.From(table).Select(selectColumns(columns)...).
			Filter(column, "in", "("+strings.Join(values, ",")+")").
			ExecuteWithContext(ctx, &raw)
	})
	if err != nil {
		return fail(err)
	}

	if isEmptyPayload(raw) {
		d.log("info", action, nil, logging.F("response", string(raw)))
		return fail(errResponseNoData)
	}
	rows, ok := d.validateResponse(raw, action, table, logging.F("column_str", colStr), logging.F("match", match))
	if !ok {
		return EmptyRows()
	}
	return rows
}

// UpdateRow applies info to the rows matching the single-entry filter. It
// reports true only when the update response carries data.
func (d *DB) UpdateRow(ctx context.Context, table string, info Row, match map[string]any, matchType reflect.Type, useServiceRole bool) bool {
	const action = "update"
	fail := func(err error) bool {
		d.log("error", action, err, logging.F("info", info), logging.F("match", match), logging.F("table_name", table))
		return false
	}

	if err := d.validate(info, "info", rowType, false); err != nil {
		return fail(err)
	}
	column, value, err := d.getFilter(match, matchType, action, table)
	if err != nil {
		return fail(err)
	}

	var raw json.RawMessage
	err = d.execute(ctx, useServiceRole, func(api *supa.Client) error {
		return api.DB.From(table).Update(info).Eq(column, value).ExecuteWithContext(ctx, &raw)
	})
	if err != nil {
		return fail(err)
	}
	if isEmptyPayload(raw) {
		return fail(errResponseNoData)
	}
	return true
}

// FindRow returns the rows where matchColumn <= withinPeriod. The
// comparison is a plain ceiling with no lower bound, not a time window. On
// failure it returns EmptyRows.
func (d *DB) FindRow(ctx context.Context, table, matchColumn string, withinPeriod int, columns []string, useServiceRole bool) []Row {
	const action = "find row"
	fail := func(err error) []Row {
		d.log("error", action, err,
			logging.F("table_name", table),
			logging.F("match_column", matchColumn),
			logging.F("within_period", withinPeriod),
			logging.F("columns", columns))
		return EmptyRows()
	}

	var raw json.RawMessage
	err := d.execute(ctx, useServiceRole, func(api *supa.Client) error {
		return api.DB.From(table).Select(selectColumns(columns)...).
			Lte(matchColumn, strconv.Itoa(withinPeriod)).
			ExecuteWithContext(ctx, &raw)
	})
	if err != nil {
		return fail(err)
	}

	if isEmptyPayload(raw) {
		return EmptyRows()
	}
	rows, ok := d.validateResponse(raw, action, table,
		logging.F("match_column", matchColumn),
		logging.F("within_period", withinPeriod),
		logging.F("columns", columns))
	if !ok {
		return EmptyRows()
	}
	return rows
}

// getFilter parses the single-entry match mapping into a PostgREST column
// and string value. The value's dynamic type must match matchType. Every
// failure is logged once with the offending mapping before returning.
func (d *DB) getFilter(match map[string]any, matchType reflect.Type, action, table string) (string, string, error) {
	fail := func(err error) (string, string, error) {
		d.log("error", action, err, logging.F("match", match), logging.F("table_name", table))
		return "", "", err
	}

	if len(match) != 1 {
		return fail(fmt.Errorf("match must have one key-value pair, got %d", len(match)))
	}
	var column string
	var value any
	for k, v := range match {
		column, value = k, v
	}
	if err := d.validate(value, fmt.Sprintf("value for filter %q", column), matchType, false); err != nil {
		return fail(err)
	}
	return column, filterValue(value), nil
}

// getListFilter parses the single-entry match mapping whose value must be
// a slice, rendering each element to its PostgREST string form.
func (d *DB) getListFilter(match map[string]any, action, table string) (string, []string, error) {
	fail := func(err error) (string, []string, error) {
		d.log("error", action, err, logging.F("match", match), logging.F("table_name", table))
		return "", nil, err
	}

	if len(match) != 1 {
		return fail(fmt.Errorf("match must have one key-value pair, got %d", len(match)))
	}
	var column string
	var value any
	for k, v := range match {
		column, value = k, v
	}
	rv := reflect.ValueOf(value)
	if value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fail(fmt.Errorf("value for filter %q must be a list", column))
	}
	values := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		values = append(values, filterValue(rv.Index(i).Interface()))
	}
	return column, values, nil
}

// validateResponse checks that the raw payload is a JSON array whose every
// element is an object, and decodes it into rows. Failures are logged with
// the offending payload and treated as no usable data.
func (d *DB) validateResponse(raw json.RawMessage, action, table string, extra ...logging.Field) ([]Row, bool) {
	fail := func(err error) ([]Row, bool) {
		fields := append([]logging.Field{logging.F("table_name", table), logging.F("data", string(raw))}, extra...)
		d.log("error", action, err, fields...)
		return nil, false
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return fail(err)
	}
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		if err := d.validate(item, "response row", rowType, false); err != nil {
			return fail(err)
		}
		m, ok := item.(map[string]any)
		if !ok {
			return fail(fmt.Errorf("response row must be %s", rowType))
		}
		rows = append(rows, Row(m))
	}
	return rows, true
}

// execute runs query against the selected handle. When the transport
// reports its connection closed, the registry's handles are reconstructed
// and the same query is retried exactly once; every other error, and any
// error from the retry itself, is returned to the caller for logging.
func (d *DB) execute(ctx context.Context, useServiceRole bool, query func(api *supa.Client) error) error {
	run := func() error {
		api := d.client.Select(useServiceRole)
		if api == nil {
			return ErrClientNotInitialized
		}
		return query(api)
	}

	err := run()
	if err == nil || !isClosedConn(err) {
		return err
	}
	d.log("info", "Calling for new clients", nil)
	d.client.Refresh()
	return run()
}

// isClosedConn reports whether err looks like the transport's connection
// was closed under us, the one condition worth a client rebuild.
func isClosedConn(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "connection reset by peer") ||
		strings.HasSuffix(msg, "EOF")
}

// filterValue renders a filter value to the string PostgREST expects.
func filterValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func selectColumns(columns []string) []string {
	if len(columns) == 0 {
		return []string{"*"}
	}
	return columns
}

func columnStr(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	return strings.Join(columns, ", ")
}

func isEmptyPayload(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == "[]"
}
