package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stravagpx/internal/config"
	"stravagpx/internal/history"
	"stravagpx/internal/logging"
	"stravagpx/internal/testsupport"
)

const sessionJar = "# Netscape HTTP Cookie File\n" +
	".strava.com\tTRUE\t/\tTRUE\t1893456000\t_strava4_session\tsession-value\n"

var morning = time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC)

func newFake(t *testing.T) *testsupport.FakeStrava {
	t.Helper()
	fake := testsupport.NewFakeStrava(t,
		testsupport.FakeActivity{ID: 42, Name: "Morning Run", SportType: "Run", StartDate: morning},
		testsupport.FakeActivity{ID: 8, Name: "Commute", SportType: "Ride", StartDate: morning.Add(-24 * time.Hour)},
		testsupport.FakeActivity{ID: 7, Name: "No GPS", SportType: "Run", StartDate: morning.Add(-48 * time.Hour), ExportStatus: http.StatusInternalServerError},
	)
	fake.RequireToken("valid-access")
	fake.RequireSessionCookie("session-value")
	return fake
}

func exportDir(t *testing.T, configPath string) string {
	t.Helper()
	doc, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	dir, err := doc.ExportDir()
	if err != nil {
		t.Fatalf("export dir: %v", err)
	}
	return dir
}

func TestExportRunIsIncremental(t *testing.T) {
	fake := newFake(t)
	configPath := testsupport.NewConfig(t,
		testsupport.WithValidToken(),
		testsupport.WithCookieJar(sessionJar),
		testsupport.WithExportFormat("{id}_{name}.gpx"))

	out, _, err := runCLI(t, fakeArgs(fake, "--config", configPath), "")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	requireContains(t, out, "Hi Test Athlete")
	requireContains(t, out, "Export of activity 7 failed")

	data, err := os.ReadFile(filepath.Join(exportDir(t, configPath), "42_Morning Run.gpx"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != testsupport.GPX(42) {
		t.Fatalf("unexpected file content %q", data)
	}

	doc, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if got := fmt.Sprint(doc.Activities.IDs()); got != "[8 42]" {
		t.Fatalf("unexpected ledger %s", got)
	}

	out, _, err = runCLI(t, fakeArgs(fake, "--config", configPath), "")
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	requireContains(t, out, "Morning Run from 2024-05-01 07:30 already exported")
	if got := fmt.Sprint(fake.Exports()); got != "[42 8 7 7]" {
		t.Fatalf("second run re-downloaded exported activities: %s", got)
	}
}

func TestExportSportFilterIsCaseInsensitive(t *testing.T) {
	fake := newFake(t)
	configPath := testsupport.NewConfig(t, testsupport.WithValidToken(), testsupport.WithCookieJar(sessionJar))

	out, _, err := runCLI(t, fakeArgs(fake, "-c", configPath, "-t", "ride"), "")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	requireContains(t, out, "Ignoring activity Morning Run")

	doc, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if got := fmt.Sprint(doc.Activities.IDs()); got != "[8]" {
		t.Fatalf("unexpected ledger %s", got)
	}
}

func TestExportRejectsUnknownSportType(t *testing.T) {
	configPath := testsupport.NewConfig(t)
	_, _, err := runCLI(t, []string{"--config", configPath, "--sport_type", "Jogging"}, "")
	if err == nil {
		t.Fatal("expected invalid sport type error")
	}
	requireContains(t, err.Error(), "Jogging")
}

func TestExportRequiresExistingConfig(t *testing.T) {
	_, _, err := runCLI(t, []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, "")
	if err == nil {
		t.Fatal("expected missing config error")
	}
	requireContains(t, err.Error(), "does not exist")
}

func TestExportUnauthorizedAborts(t *testing.T) {
	fake := newFake(t)
	configPath := testsupport.NewConfig(t,
		testsupport.WithToken("revoked", "r", time.Now().Add(time.Hour)),
		testsupport.WithCookieJar(sessionJar))

	_, _, err := runCLI(t, fakeArgs(fake, "--config", configPath), "")
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	if len(fake.Exports()) != 0 {
		t.Fatalf("no export should be attempted: %v", fake.Exports())
	}
}

func TestExportWithoutCookieJarReportsFailures(t *testing.T) {
	fake := newFake(t)
	configPath := testsupport.NewConfig(t, testsupport.WithValidToken())

	out, stderr, err := runCLI(t, fakeArgs(fake, "--config", configPath), "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Create a cookie jar for an existing Strava session")
	requireContains(t, stderr, "cookie_jar_missing")

	doc, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if len(doc.Activities) != 0 {
		t.Fatalf("nothing should be exported without session cookies: %v", doc.Activities.IDs())
	}
}

func TestHistoryAndLedgerCommands(t *testing.T) {
	fake := newFake(t)
	configPath := testsupport.NewConfig(t,
		testsupport.WithValidToken(),
		testsupport.WithCookieJar(sessionJar),
		testsupport.WithHistory())

	if _, _, err := runCLI(t, fakeArgs(fake, "--config", configPath), ""); err != nil {
		t.Fatalf("export: %v", err)
	}

	out, _, err := runCLI(t, []string{"history", "--config", configPath}, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Exported")
	requireContains(t, out, "ok")

	runID := latestRunID(t, configPath)
	out, _, err = runCLI(t, []string{"history", "--config", configPath, "--run", runID}, "")
	if err != nil {
		t.Fatalf("history --run: %v", err)
	}
	requireContains(t, out, "Morning Run")
	requireContains(t, out, "exported")
	requireContains(t, out, "failed")

	out, _, err = runCLI(t, []string{"ledger", "--config", configPath}, "")
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	requireContains(t, out, "Morning Run")
	requireContains(t, out, "Commute")
}

func latestRunID(t *testing.T, configPath string) string {
	t.Helper()
	doc, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	path, err := doc.HistoryPath()
	if err != nil {
		t.Fatalf("history path: %v", err)
	}
	journal, err := history.Open(context.Background(), path, logging.NewNop())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer journal.Close()
	runs, err := journal.Recent(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("recent runs: %v (%d)", err, len(runs))
	}
	return runs[0].ID
}

func TestHistoryDisabled(t *testing.T) {
	configPath := testsupport.NewConfig(t)
	out, _, err := runCLI(t, []string{"history", "-c", configPath}, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Run history is disabled")
}
