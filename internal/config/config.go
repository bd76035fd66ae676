// Package config reads the environment configuration of both binaries.
package config

import (
	"errors"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig configures cmd/server.
type ServerConfig struct {
	Port       int           `env:"PORT" envDefault:"8080"`
	DBPath     string        `env:"DB_PATH" envDefault:"./data/settleup.db"`
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CSRFTTL    time.Duration `env:"CSRF_TTL" envDefault:"1h"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string        `env:"LOG_FORMAT" envDefault:"text"`
}

// ClientConfig configures cmd/settle.
type ClientConfig struct {
	ServerURL    string        `env:"SETTLE_SERVER_URL,required,notEmpty"`
	SessionToken string        `env:"SETTLE_SESSION_TOKEN"`
	Username     string        `env:"SETTLE_USERNAME"`
	Password     string        `env:"SETTLE_PASSWORD"`
	EventID      string        `env:"SETTLE_EVENT_ID,required,notEmpty"`
	RecordURL    string        `env:"SETTLE_RECORD_URL"`
	LocalOnly    bool          `env:"SETTLE_LOCAL_ONLY" envDefault:"false"`
	Timeout      time.Duration `env:"SETTLE_TIMEOUT" envDefault:"5s"`
	CallbackURL  string        `env:"SETTLE_CALLBACK_URL"`
	OpenLinks    bool          `env:"SETTLE_OPEN_LINKS" envDefault:"false"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string        `env:"LOG_FORMAT" envDefault:"text"`
}

// RecordEndpoint is the settlement endpoint the client submits to, or nil
// when running local-only.
func (c ClientConfig) RecordEndpoint(procedure string) *url.URL {
	if c.LocalOnly {
		return nil
	}
	if c.RecordURL != "" {
		u, err := url.Parse(c.RecordURL)
		if err != nil {
			return nil
		}
		return u
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return nil
	}
	return u.JoinPath(procedure)
}

func NewServer() (ServerConfig, error) {
	return parse[ServerConfig](env.Options{})
}

func NewClient() (ClientConfig, error) {
	c, err := parse[ClientConfig](env.Options{})
	if err != nil {
		return ClientConfig{}, err
	}
	return c, c.validate()
}

func (c ClientConfig) validate() error {
	if !isAbsURL(c.ServerURL) {
		return errors.New("SETTLE_SERVER_URL must be an absolute URL")
	}
	if c.RecordURL != "" && !isAbsURL(c.RecordURL) {
		return errors.New("SETTLE_RECORD_URL must be an absolute URL")
	}
	if c.SessionToken == "" && (c.Username == "" || c.Password == "") {
		return errors.New("set SETTLE_SESSION_TOKEN, or SETTLE_USERNAME and SETTLE_PASSWORD")
	}
	if c.Timeout <= 0 {
		return errors.New("SETTLE_TIMEOUT must be positive")
	}
	return nil
}

func isAbsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && u.Host != ""
}

func parse[T any](opts env.Options) (T, error) {
	c, err := env.ParseAsWithOptions[T](opts)
	if err != nil {
		var zero T
		return zero, err
	}
	return c, nil
}
