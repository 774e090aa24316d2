package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"stravagpx/internal/config"
)

// ConfigOption allows callers to customize the generated test document.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	name    string
	doc     *config.Document
}

// NewConfig writes a valid configuration document into a per-test temp
// directory and returns its path. Export, cookie and history paths point
// inside the same directory.
func NewConfig(t testing.TB, opts ...ConfigOption) string {
	t.Helper()

	base := t.TempDir()
	doc := config.Default()
	doc.API.ClientID = 1234
	doc.API.ClientSecret = "test-secret"
	doc.ExportPath = filepath.Join(base, "export")
	doc.CookieSessionPath = filepath.Join(base, "cookies.txt")
	doc.History.Path = filepath.Join(base, "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		name:    "config.yaml",
		doc:     &doc,
	}
	for _, opt := range opts {
		opt(builder)
	}

	path := filepath.Join(base, builder.name)
	format, err := config.FormatForPath(path)
	if err != nil {
		t.Fatalf("config format: %v", err)
	}
	data, err := config.Encode(*builder.doc, format)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// WithFileName changes the document file name (and thereby its encoding).
func WithFileName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.name = name
	}
}

// WithClientSecret overrides the stored client secret. An empty value
// leaves the secret to the STRAVA_CLIENT_SECRET fallback.
func WithClientSecret(secret string) ConfigOption {
	return func(b *configBuilder) {
		b.doc.API.ClientSecret = secret
	}
}

// WithExportFormat overrides the file name template.
func WithExportFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.doc.ExportFormat = format
	}
}

// WithToken stores an OAuth token in the document.
func WithToken(access, refresh string, expiresAt time.Time) ConfigOption {
	return func(b *configBuilder) {
		b.doc.API.AuthToken = &config.AuthToken{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    expiresAt.Unix(),
		}
	}
}

// WithValidToken stores a token that stays valid for the rest of the test.
func WithValidToken() ConfigOption {
	return WithToken("valid-access", "valid-refresh", time.Now().Add(6*time.Hour))
}

// WithExported seeds the ledger with an entry.
func WithExported(id int64, name string, start time.Time) ConfigOption {
	return func(b *configBuilder) {
		b.doc.Activities[config.ActivityID(id)] = config.ExportedActivity{Name: name, StartDate: start.UTC()}
	}
}

// WithHistory enables the run journal.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.doc.History.Enabled = true
	}
}

// WithCookieJar writes a Netscape cookie jar next to the document.
func WithCookieJar(contents string) ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, b.doc.CookieSessionPath, contents)
	}
}
