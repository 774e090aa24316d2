package main

import (
	"bytes"
	"strings"
	"testing"

	"stravagpx/internal/testsupport"
)

func runCLI(t *testing.T, args []string, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func fakeArgs(fake *testsupport.FakeStrava, args ...string) []string {
	return append([]string{
		"--api-url", fake.APIBaseURL(),
		"--web-url", fake.WebBaseURL(),
		"--oauth-url", fake.WebBaseURL(),
	}, args...)
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\nGot:\n%s", needle, haystack)
	}
}
