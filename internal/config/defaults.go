package config

const (
	defaultConfigPath        = "config.yaml"
	defaultExportPath        = "export"
	defaultExportFormat      = "{created_at}_{id}_{name}.gpx"
	defaultCookieSessionPath = "cookies-strava-com.txt"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultHistoryPath       = "stravagpx-history.db"
)

// DefaultConfigPath is the document path used when --config is not given.
const DefaultConfigPath = defaultConfigPath

// Default returns a Document populated with repository defaults.
func Default() Document {
	return Document{
		ExportPath:        defaultExportPath,
		ExportFormat:      defaultExportFormat,
		CookieSessionPath: defaultCookieSessionPath,
		Activities:        Ledger{},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Path: defaultHistoryPath,
		},
	}
}
