package config

import (
	"os"
	"strconv"
	"strings"
)

func (d *Document) normalize() {
	d.normalizeAPI()
	d.normalizePaths()
	d.normalizeLogging()
	if d.Activities == nil {
		d.Activities = Ledger{}
	}
}

func (d *Document) normalizeAPI() {
	if d.API.ClientID == 0 {
		if value, ok := os.LookupEnv("STRAVA_CLIENT_ID"); ok {
			if id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil && id != 0 {
				d.API.ClientID = id
				d.API.clientIDFromEnv = true
			}
		}
	}
	d.API.ClientSecret = strings.TrimSpace(d.API.ClientSecret)
	if d.API.ClientSecret == "" {
		if value, ok := os.LookupEnv("STRAVA_CLIENT_SECRET"); ok && strings.TrimSpace(value) != "" {
			d.API.ClientSecret = strings.TrimSpace(value)
			d.API.clientSecretFromEnv = true
		}
	}
	if token := d.API.AuthToken; token != nil {
		token.AccessToken = strings.TrimSpace(token.AccessToken)
		token.RefreshToken = strings.TrimSpace(token.RefreshToken)
		if token.AccessToken == "" && token.RefreshToken == "" {
			d.API.AuthToken = nil
		}
	}
}

func (d *Document) normalizePaths() {
	if strings.TrimSpace(d.ExportPath) == "" {
		d.ExportPath = defaultExportPath
	}
	if d.ExportFormat == "" {
		d.ExportFormat = defaultExportFormat
	}
	if strings.TrimSpace(d.CookieSessionPath) == "" {
		d.CookieSessionPath = defaultCookieSessionPath
	}
	if strings.TrimSpace(d.History.Path) == "" {
		d.History.Path = defaultHistoryPath
	}
}

func (d *Document) normalizeLogging() {
	d.Logging.Format = strings.ToLower(strings.TrimSpace(d.Logging.Format))
	if d.Logging.Format == "" {
		d.Logging.Format = defaultLogFormat
	}
	d.Logging.Level = strings.ToLower(strings.TrimSpace(d.Logging.Level))
	if d.Logging.Level == "" {
		d.Logging.Level = defaultLogLevel
	}
}
