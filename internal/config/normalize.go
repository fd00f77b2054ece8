package config

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/text/language"
)

// Normalize applies defaults and canonicalizes user-supplied fields.
// It is idempotent and is called by Load; tests may call it directly.
func Normalize(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "./_site"
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.NumCPU()
	}
	if cfg.SiteBasePath == "" {
		cfg.SiteBasePath = "/"
	}
	if !strings.HasPrefix(cfg.SiteBasePath, "/") {
		cfg.SiteBasePath = "/" + cfg.SiteBasePath
	}

	if cfg.Localization.DefaultLocale == "" {
		cfg.Localization.DefaultLocale = "en-us"
	}
	locale, err := NormalizeLocale(cfg.Localization.DefaultLocale)
	if err != nil {
		return err
	}
	cfg.Localization.DefaultLocale = locale

	if cfg.Registry.Driver == "" {
		cfg.Registry.Driver = "memory"
	}
	switch cfg.Registry.Driver {
	case "memory":
	case "sqlite":
		if cfg.Registry.Path == "" {
			cfg.Registry.Path = ":memory:"
		}
	default:
		return fmt.Errorf("unknown registry driver: %s", cfg.Registry.Driver)
	}

	if cfg.Events.Enabled {
		if cfg.Events.NATSURL == "" {
			return fmt.Errorf("events.nats_url is required when events are enabled")
		}
		if cfg.Events.Subject == "" {
			cfg.Events.Subject = "docpublish.published"
		}
	}

	return nil
}

// NormalizeLocale validates a BCP 47 locale tag and returns it in the
// lower-case form used throughout the build (e.g. "en-us").
func NormalizeLocale(locale string) (string, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return strings.ToLower(tag.String()), nil
}
