package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the configuration for structural errors: bad field values,
// unknown service names, and listen port collisions.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("invalid value for %s (rule %q)", e.Namespace(), e.Tag())
		}
		return err
	}

	for _, name := range cfg.Services.Disabled {
		if !KnownService(name) {
			return fmt.Errorf("unknown service in services.disabled: %q", name)
		}
	}
	for name := range cfg.Services.Ports {
		if !KnownService(name) {
			return fmt.Errorf("unknown service in services.ports: %q", name)
		}
	}

	// Every enabled listener (including admin) needs a distinct port.
	used := map[int]string{cfg.Admin.Port: "admin"}
	for _, name := range ServiceNames {
		if !cfg.Services.Enabled(name) {
			continue
		}
		port := cfg.Services.Ports[name]
		if holder, taken := used[port]; taken {
			return fmt.Errorf("port %d assigned to both %s and %s", port, holder, name)
		}
		used[port] = name
	}
	return nil
}
