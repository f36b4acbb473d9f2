package supasaas

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ashrobertsdragon/SupaSaaS/validate"
)

// Login carries the Supabase project credentials. ServiceRole is optional
// and unlocks the privileged handle.
type Login struct {
	URL         string `env:"SUPABASE_URL" validate:"required,url"`
	Key         string `env:"SUPABASE_KEY" validate:"required"`
	ServiceRole string `env:"SUPABASE_SERVICE_ROLE"`
}

// NewLogin builds a validated Login from explicit values.
func NewLogin(url, key, serviceRole string) (Login, error) {
	login := Login{URL: url, Key: key, ServiceRole: serviceRole}
	if err := validate.Struct(login); err != nil {
		return Login{}, err
	}
	return login, nil
}

// LoginFromEnv builds a Login from SUPABASE_URL, SUPABASE_KEY and the
// optional SUPABASE_SERVICE_ROLE. A .env file in the working directory is
// loaded first when present.
func LoginFromEnv() (Login, error) {
	_ = godotenv.Load()

	var login Login
	if err := env.Parse(&login); err != nil {
		return Login{}, err
	}
	if err := validate.Struct(login); err != nil {
		return Login{}, err
	}
	return login, nil
}

// HasServiceRole reports whether the privileged key is configured.
func (l Login) HasServiceRole() bool {
	return l.ServiceRole != ""
}
