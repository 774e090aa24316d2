package config

import (
	"errors"
	"fmt"
	"strings"

	"stravagpx/internal/trackfile"
)

// Validate ensures the document is usable.
func (d *Document) Validate() error {
	if err := d.validateAPI(); err != nil {
		return err
	}
	if err := d.validateExport(); err != nil {
		return err
	}
	if err := d.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (d *Document) validateAPI() error {
	if d.API.ClientID <= 0 {
		return errors.New("api.client_id must be a positive integer (set it or export STRAVA_CLIENT_ID)")
	}
	if strings.TrimSpace(d.API.ClientSecret) == "" {
		return errors.New("api.client_secret is required (set it or export STRAVA_CLIENT_SECRET)")
	}
	return nil
}

func (d *Document) validateExport() error {
	if strings.TrimSpace(d.ExportPath) == "" {
		return errors.New("export_path must be set")
	}
	if _, err := trackfile.ParseTemplate(d.ExportFormat); err != nil {
		return fmt.Errorf("export_format: %w", err)
	}
	for id := range d.Activities {
		if id <= 0 {
			return fmt.Errorf("activities: invalid activity id %d", id)
		}
	}
	return nil
}

func (d *Document) validateLogging() error {
	switch d.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", d.Logging.Format)
	}
	switch d.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", d.Logging.Level)
	}
	return nil
}
