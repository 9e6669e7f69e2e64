package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/navrouter/internal/errors"
)

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.json")
	if err := os.WriteFile(path, []byte(testManifest), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRankCommand(t *testing.T) {
	out, err := run(t, "rank", "--config", t.TempDir(), "--manifest", writeManifest(t))
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("output:\n%s", out)
	}
	order := []string{"/users/new", "/users/:id", "/files/:rest*", "/", "(default)"}
	for i, want := range order {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("line %d = %q, want %q", i+1, lines[i+1], want)
		}
	}
}

func TestMatchCommand(t *testing.T) {
	manifest := writeManifest(t)
	out, err := run(t, "match", "--config", t.TempDir(), "--manifest", manifest, "/users/9?tab=a#top")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"/users/:id", `id = "9"`, `tab = "a"`, "#top", "user.html"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "match", "--config", t.TempDir(), "--manifest", manifest, "--json", "/nope")
	if err != nil {
		t.Fatal(err)
	}
	var res matchResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Default || res.View != "404.html" {
		t.Errorf("default match = %+v", res)
	}
}

func TestMatchCommandErrors(t *testing.T) {
	if _, err := run(t, "match", "--config", t.TempDir()); !errors.HasCode(err, "X001") {
		t.Errorf("missing url error = %v, want X001", err)
	}
	_, err := run(t, "match", "--config", t.TempDir(), "--manifest", writeManifest(t), "/a/%zz")
	if !errors.HasCode(err, "P002") {
		t.Errorf("bad url error = %v, want P002", err)
	}
	if _, err := run(t, "rank", "--config", t.TempDir(), "--manifest", "/does/not/exist.json"); !errors.HasCode(err, "M001") {
		t.Errorf("missing manifest error = %v, want M001", err)
	}
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "parse", "--json", "/search/?q=go+lang&page=2&page=3#results")
	if err != nil {
		t.Fatal(err)
	}
	var loc struct {
		Path  string
		Query map[string]string
		Hash  string
	}
	if err := json.Unmarshal([]byte(out), &loc); err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/search" || loc.Query["q"] != "go lang" || loc.Query["page"] != "3" || loc.Hash != "#results" {
		t.Errorf("parsed = %+v", loc)
	}

	if _, err := run(t, "parse"); !errors.HasCode(err, "X001") {
		t.Errorf("missing url error = %v, want X001", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", out, version)
	}
}
