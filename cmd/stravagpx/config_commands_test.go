package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "1234")
	target := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate", "--config", target}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "No access token stored")
}

func TestConfigInitTOML(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "1234")
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, _, err := runCLI(t, []string{"--config", target, "config", "init"}, ""); err != nil {
		t.Fatalf("config init: %v", err)
	}
	out, _, err := runCLI(t, []string{"config", "validate", "-c", target}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateReportsMissingCredentials(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "")
	target := filepath.Join(t.TempDir(), "config.yaml")
	if _, _, err := runCLI(t, []string{"config", "init", "-p", target}, ""); err != nil {
		t.Fatalf("config init: %v", err)
	}
	_, _, err := runCLI(t, []string{"config", "validate", "-c", target}, "")
	if err == nil {
		t.Fatal("expected validation error for the sample client id")
	}
	requireContains(t, err.Error(), "client_id")
}
