package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed sample_config.yaml
var sampleConfig string

// AuthToken is the OAuth token for the Strava API.
type AuthToken struct {
	AccessToken  string `yaml:"access_token" toml:"access_token"`
	RefreshToken string `yaml:"refresh_token" toml:"refresh_token"`
	ExpiresAt    int64  `yaml:"expires_at" toml:"expires_at"`
}

// Expired reports whether the token is past its expiry at now.
func (t AuthToken) Expired(now time.Time) bool {
	return now.Unix() > t.ExpiresAt
}

// Expiry returns ExpiresAt as a time.
func (t AuthToken) Expiry() time.Time {
	return time.Unix(t.ExpiresAt, 0).UTC()
}

// API contains the Strava API application credentials and token.
type API struct {
	ClientID     int64      `yaml:"client_id" toml:"client_id"`
	ClientSecret string     `yaml:"client_secret" toml:"client_secret"`
	AuthToken    *AuthToken `yaml:"auth_token,omitempty" toml:"auth_token,omitempty"`

	// Set when the value came from the environment; such values are
	// usable in memory but never encoded.
	clientIDFromEnv     bool
	clientSecretFromEnv bool
}

// persisted returns the section as it should be written to disk.
func (a API) persisted() API {
	if a.clientIDFromEnv {
		a.ClientID = 0
	}
	if a.clientSecretFromEnv {
		a.ClientSecret = ""
	}
	return a
}

// ExportedActivity is a ledger entry recorded after a successful export.
type ExportedActivity struct {
	Name      string    `yaml:"name" toml:"name"`
	StartDate time.Time `yaml:"start_date" toml:"start_date"`
}

// ActivityID keys the ledger. It encodes as text so both YAML and TOML can
// use it as a map key.
type ActivityID int64

// MarshalText implements encoding.TextMarshaler.
func (id ActivityID) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(id), 10)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ActivityID) UnmarshalText(text []byte) error {
	value, err := strconv.ParseInt(strings.TrimSpace(string(text)), 10, 64)
	if err != nil {
		return fmt.Errorf("activity id %q: %w", text, err)
	}
	*id = ActivityID(value)
	return nil
}

// Ledger maps activity ids to their export records.
type Ledger map[ActivityID]ExportedActivity

// Has reports whether id was exported.
func (l Ledger) Has(id int64) bool {
	_, ok := l[ActivityID(id)]
	return ok
}

// IDs returns the exported ids in ascending order.
func (l Ledger) IDs() []int64 {
	ids := make([]int64, 0, len(l))
	for id := range l {
		ids = append(ids, int64(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `yaml:"format" toml:"format"`
	Level  string `yaml:"level" toml:"level"`
}

// History contains configuration for the run journal.
type History struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Document is the persisted configuration and state of stravagpx.
//
// Sections:
//   - API: application credentials and the OAuth token
//   - ExportPath / ExportFormat: destination directory and file name template
//   - CookieSessionPath: Netscape cookie jar of a logged-in browser session
//   - Activities: ledger of exported activities
//   - Logging: log format and level
//   - History: optional SQLite run journal
type Document struct {
	API               API     `yaml:"api" toml:"api"`
	ExportPath        string  `yaml:"export_path" toml:"export_path"`
	ExportFormat      string  `yaml:"export_format" toml:"export_format"`
	CookieSessionPath string  `yaml:"strava_cookie_session_path" toml:"strava_cookie_session_path"`
	Activities        Ledger  `yaml:"activities" toml:"activities"`
	Logging           Logging `yaml:"logging" toml:"logging"`
	History           History `yaml:"history" toml:"history"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	if d.API.AuthToken != nil {
		token := *d.API.AuthToken
		out.API.AuthToken = &token
	}
	out.Activities = make(Ledger, len(d.Activities))
	maps.Copy(out.Activities, d.Activities)
	return out
}

// ExportDir returns the expanded export directory.
func (d Document) ExportDir() (string, error) {
	return expandPath(d.ExportPath)
}

// CookieJarPath returns the expanded cookie jar path.
func (d Document) CookieJarPath() (string, error) {
	return expandPath(d.CookieSessionPath)
}

// HistoryPath returns the expanded run journal path.
func (d Document) HistoryPath() (string, error) {
	return expandPath(d.History.Path)
}

// Load reads, normalizes, and validates the document at path. The file must
// exist.
func Load(path string) (*Document, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	format, err := FormatForPath(resolved)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s does not exist (create one with 'stravagpx config init')", resolved)
		}
		return nil, fmt.Errorf("open config: %w", err)
	}

	doc := Default()
	if err := Decode(data, format, &doc); err != nil {
		return nil, err
	}

	doc.normalize()

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location
// in the encoding implied by its extension.
func CreateSample(path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	data := []byte(sampleConfig)
	if format != FormatYAML {
		var doc Document
		if err := Decode(data, FormatYAML, &doc); err != nil {
			return fmt.Errorf("decode sample config: %w", err)
		}
		if data, err = Encode(doc, format); err != nil {
			return fmt.Errorf("encode sample config: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
