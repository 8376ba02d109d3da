package authkit

import (
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// MinSigningSecretBytes is the smallest secret HS256 accepts safely.
const MinSigningSecretBytes = 32

// Config holds the immutable runtime options for the auth core. The signing
// secret is injected once at startup and never mutated; key rotation would
// require a versioned lookup keyed by a kid claim, which is out of scope.
type Config struct {
	SigningSecret   string        `env:"AUTH_SIGNING_SECRET"`
	AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"60m"`
	RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"168h"`
	Issuer          string        `env:"AUTH_ISSUER"`
	Audience        []string      `env:"AUTH_AUDIENCE" envSeparator:","`
}

// LoadConfig reads configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to parse auth configuration")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate enforces the recognized option constraints.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(
			&c.SigningSecret,
			validation.Required,
			validation.Length(MinSigningSecretBytes, 0),
		),
		validation.Field(&c.AccessTokenTTL, validation.By(positiveDuration)),
		validation.Field(&c.RefreshTokenTTL, validation.By(positiveDuration)),
	)
	if err != nil {
		return validationError(err, "invalid auth configuration")
	}
	return nil
}

func positiveDuration(value any) error {
	d, ok := value.(time.Duration)
	if !ok || d <= 0 {
		return goerrors.New("must be a positive duration", goerrors.CategoryValidation)
	}
	return nil
}
