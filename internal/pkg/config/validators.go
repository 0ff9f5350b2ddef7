// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Validator checks one aspect of a loaded configuration.
type Validator interface {
	Validate(cfg *Config) error
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// rule is a cross-field check that struct tags cannot express.
type rule func(cfg *Config) error

func checkRules(cfg *Config, rules []rule) error {
	var errs []error
	for _, r := range rules {
		if err := r(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BasicValidator applies the struct tags, then every cross-field rule. All
// rule failures are reported together.
type BasicValidator struct{}

func (v *BasicValidator) Validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, strings.Join(msgs, ", "))
	}

	return checkRules(cfg, basicRules)
}

var basicRules = []rule{
	func(c *Config) error {
		if c.Database.MaxConnections < c.Database.MinConnections {
			return errors.New("database max_connections must be >= min_connections")
		}
		return nil
	},
	func(c *Config) error {
		if c.Itinerary.StaticURL == "" && c.Itinerary.GatewayURL == "" {
			return fmt.Errorf("%w: ITINERARY_SERVICE_URL or API_GATEWAY_URL", ErrMissingRequiredConfig)
		}
		return nil
	},
	func(c *Config) error {
		if c.Itinerary.TokenTTL < 0 {
			return errors.New("service token ttl must not be negative")
		}
		return nil
	},
	func(c *Config) error {
		if c.Messaging.MaxAttempts > 0 && c.Messaging.RetryDelay < 0 {
			return errors.New("notification retry delay must not be negative")
		}
		return nil
	},
	func(c *Config) error {
		var errs []error
		for name, spec := range map[string]string{
			"ANALYTICS_RECOMPUTE_CRON": c.Analytics.RecomputeCron,
			"ANALYTICS_SNAPSHOT_CRON":  c.Analytics.SnapshotCron,
		} {
			if spec == "" {
				continue
			}
			if _, err := cron.ParseStandard(spec); err != nil {
				errs = append(errs, fmt.Errorf("%s %q: %w", name, spec, err))
			}
		}
		return errors.Join(errs...)
	},
	func(c *Config) error {
		if c.Analytics.Timezone == "" {
			return nil
		}
		if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
			return fmt.Errorf("ANALYTICS_TIMEZONE: %w", err)
		}
		return nil
	},
}

// ProductionValidator adds the rules that only apply to production.
type ProductionValidator struct{}

func (v *ProductionValidator) Validate(cfg *Config) error {
	return checkRules(cfg, productionRules)
}

var productionRules = []rule{
	func(c *Config) error {
		// AWS provided secrets are checked again once ResolveSecrets overlays them
		if c.Secrets.Provider == "aws" && c.Security.JWTSecret == "" {
			return nil
		}
		switch s := c.Security.JWTSecret; {
		case s == "" || strings.Contains(s, "MISSING_"):
			return fmt.Errorf("%w: JWT secret", ErrMissingRequiredConfig)
		case s == "development-secret-change-in-production":
			return errors.New("default JWT secret cannot be used in production")
		case len(s) < 32:
			return errors.New("JWT secret must be at least 32 characters")
		}
		return nil
	},
	func(c *Config) error {
		if strings.Contains(c.Database.Password, "MISSING_") {
			return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
		}
		if c.Database.SSLMode == "disable" {
			return errors.New("database SSL must be enabled in production")
		}
		return nil
	},
	func(c *Config) error {
		if !c.Security.SecureHeaders {
			return errors.New("secure headers must be enabled in production")
		}
		for _, origin := range c.Security.AllowedOrigins {
			if origin == "*" {
				return errors.New("wildcard origin (*) not allowed in production")
			}
		}
		return nil
	},
	func(c *Config) error {
		if c.Server.TLSEnabled && (c.Server.TLSCertFile == "" || c.Server.TLSKeyFile == "") {
			return errors.New("TLS cert and key files must be provided when TLS is enabled")
		}
		return nil
	},
}
