package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against its struct tags plus the
// cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fieldPath(fe), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if cfg.Library.LocalRoot != "" && cfg.Library.LocalRoot == cfg.Library.PermanentRoot {
		return fmt.Errorf("library: local_root and permanent_root must differ")
	}

	return nil
}

// fieldPath renders a validation error's field as a config path, e.g.
// "library.local_root" instead of "Config.Library.LocalRoot".
func fieldPath(fe validator.FieldError) string {
	path := strings.TrimPrefix(fe.Namespace(), "Config.")
	return strings.ToLower(path)
}
