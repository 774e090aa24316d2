package store_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stravagpx/internal/config"
	"stravagpx/internal/logging"
	"stravagpx/internal/store"
	"stravagpx/internal/testsupport"
)

func TestOpenRejectsSecondWriter(t *testing.T) {
	path := testsupport.NewConfig(t)
	testsupport.MustOpenStore(t, path)

	_, err := store.Open(path, logging.NewNop())
	if !errors.Is(err, store.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestCloseReleasesLock(t *testing.T) {
	path := testsupport.NewConfig(t)
	first, err := store.Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	second, err := store.Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	_ = second.Close()
}

func TestOpenMissingDocument(t *testing.T) {
	if _, err := store.Open(filepath.Join(t.TempDir(), "missing.yaml"), logging.NewNop()); err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestRecordExportPersistsImmediately(t *testing.T) {
	path := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, path)

	start := time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC)
	if err := st.RecordExport(42, config.ExportedActivity{Name: "Morning Run", StartDate: start}); err != nil {
		t.Fatalf("RecordExport returned error: %v", err)
	}
	if !st.Exported(42) {
		t.Fatal("expected 42 in memory ledger")
	}

	onDisk, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload document: %v", err)
	}
	entry, ok := onDisk.Activities[42]
	if !ok {
		t.Fatalf("expected 42 on disk, got %v", onDisk.Activities.IDs())
	}
	if entry.Name != "Morning Run" || !entry.StartDate.Equal(start) {
		t.Fatalf("unexpected ledger entry %#v", entry)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestRecordExportRefusesDuplicates(t *testing.T) {
	path := testsupport.NewConfig(t, testsupport.WithExported(42, "Original", time.Unix(0, 0)))
	st := testsupport.MustOpenStore(t, path)

	err := st.RecordExport(42, config.ExportedActivity{Name: "Replacement"})
	if !errors.Is(err, store.ErrAlreadyExported) {
		t.Fatalf("expected ErrAlreadyExported, got %v", err)
	}
	if got := st.Document().Activities[42].Name; got != "Original" {
		t.Fatalf("ledger entry was replaced: %q", got)
	}
}

func TestCommitMutationErrorLeavesStateUntouched(t *testing.T) {
	path := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, path)
	before := testsupport.ReadFile(t, path)

	boom := errors.New("boom")
	err := st.Commit(func(doc *config.Document) error {
		doc.Activities[9] = config.ExportedActivity{Name: "partial"}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutation error, got %v", err)
	}
	if st.Exported(9) {
		t.Fatal("failed mutation leaked into memory")
	}
	if after := testsupport.ReadFile(t, path); after != before {
		t.Fatalf("failed mutation changed the file:\n%s", after)
	}
}

func TestCommitRejectsInvalidDocument(t *testing.T) {
	path := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, path)

	err := st.Commit(func(doc *config.Document) error {
		doc.API.ClientID = 0
		return nil
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if st.Document().API.ClientID == 0 {
		t.Fatal("invalid document replaced the in-memory state")
	}
}

func TestCommitFlushFailureKeepsMemory(t *testing.T) {
	path := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, path)

	// A directory at the temp path makes the flush fail.
	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	err := st.RecordExport(5, config.ExportedActivity{Name: "five"})
	if err == nil || !strings.Contains(err.Error(), "persist configuration") {
		t.Fatalf("expected persist error, got %v", err)
	}
	if st.Exported(5) {
		t.Fatal("in-memory ledger changed although the flush failed")
	}
}

func TestCommitNeverPersistsEnvSecret(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_SECRET", "env-super-secret")
	path := testsupport.NewConfig(t, testsupport.WithClientSecret(""))
	st := testsupport.MustOpenStore(t, path)

	if got := st.Document().API.ClientSecret; got != "env-super-secret" {
		t.Fatalf("expected env secret in memory, got %q", got)
	}
	if err := st.RecordExport(1, config.ExportedActivity{Name: "one"}); err != nil {
		t.Fatalf("RecordExport returned error: %v", err)
	}
	if err := st.SetAuthToken(config.AuthToken{AccessToken: "a", ExpiresAt: 1}); err != nil {
		t.Fatalf("SetAuthToken returned error: %v", err)
	}

	if contents := testsupport.ReadFile(t, path); strings.Contains(contents, "env-super-secret") {
		t.Fatalf("environment secret written into the document:\n%s", contents)
	}
	if got := st.Document().API.ClientSecret; got != "env-super-secret" {
		t.Fatalf("env secret lost after commit, got %q", got)
	}

	onDisk, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload with env fallback: %v", err)
	}
	if !onDisk.Activities.Has(1) {
		t.Fatal("ledger entry missing after reload")
	}
}

func TestExportsNewestFirst(t *testing.T) {
	path := testsupport.NewConfig(t,
		testsupport.WithExported(1, "old", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		testsupport.WithExported(3, "new", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		testsupport.WithExported(2, "mid", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)),
	)
	st := testsupport.MustOpenStore(t, path)

	exports := st.Exports()
	if len(exports) != 3 {
		t.Fatalf("expected 3 exports, got %d", len(exports))
	}
	for i, want := range []int64{3, 2, 1} {
		if exports[i].ID != want {
			t.Fatalf("exports[%d] = %d, want %d", i, exports[i].ID, want)
		}
	}
}

func TestSetAuthTokenPersists(t *testing.T) {
	path := testsupport.NewConfig(t, testsupport.WithFileName("config.toml"))
	st := testsupport.MustOpenStore(t, path)

	token := config.AuthToken{AccessToken: "a", RefreshToken: "r", ExpiresAt: 1900000000}
	if err := st.SetAuthToken(token); err != nil {
		t.Fatalf("SetAuthToken returned error: %v", err)
	}

	onDisk, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload document: %v", err)
	}
	if onDisk.API.AuthToken == nil || *onDisk.API.AuthToken != token {
		t.Fatalf("unexpected token on disk: %#v", onDisk.API.AuthToken)
	}
}

func TestDocumentReturnsCopy(t *testing.T) {
	path := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, path)

	doc := st.Document()
	doc.Activities[77] = config.ExportedActivity{}
	if st.Exported(77) {
		t.Fatal("Document leaked internal state")
	}
}

func TestSetLoggerRoutesCommitLogs(t *testing.T) {
	path := testsupport.NewConfig(t)
	st, err := store.Open(path, nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	st.SetLogger(logger)

	if err := st.RecordExport(3, config.ExportedActivity{Name: "three"}); err != nil {
		t.Fatalf("RecordExport returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "store: committed configuration document") {
		t.Fatalf("commit not logged through the new logger: %q", buf.String())
	}
}
