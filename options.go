package supasaas

import (
	"github.com/ashrobertsdragon/SupaSaaS/logging"
	"github.com/ashrobertsdragon/SupaSaaS/validate"
)

// Option adjusts the callbacks a facade is built with.
type Option func(*settings)

type settings struct {
	log      logging.Func
	validate validate.Func
}

func newSettings(opts ...Option) settings {
	s := settings{
		log:      logging.Default,
		validate: validate.Value,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger replaces the default logging callback.
func WithLogger(log logging.Func) Option {
	return func(s *settings) { s.log = log }
}

// WithValidator replaces the default argument validator.
func WithValidator(v validate.Func) Option {
	return func(s *settings) { s.validate = v }
}
