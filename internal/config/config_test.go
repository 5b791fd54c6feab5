package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "formtree.yaml")
	data := `log:
  level: debug
compute:
  stepBudget: 500
scaffold:
  allowHttp: true
  httpTimeout: 5s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	want.Log.Level = "debug"
	want.Compute.StepBudget = 500
	want.Scaffold = ScaffoldConfig{AllowHTTP: true, HTTPTimeout: 5 * time.Second}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	if cfg, err := Load(""); err != nil || cfg != Default() {
		t.Fatalf("expected defaults for empty path, got %+v, %v", cfg, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	cases := map[string]string{
		"unknown key":   "colour: blue\n",
		"bad level":     "log:\n  level: loud\n",
		"bad format":    "log:\n  format: xml\n",
		"negative step": "compute:\n  stepBudget: -1\n",
	}
	for name, data := range cases {
		cfg := Default()
		if err := Decode([]byte(data), &cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger("info", "json", &buf)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("Hidden")
	logger.Info("Shown", "formId", "f1")
	out := buf.String()
	if strings.Contains(out, "Hidden") || !strings.Contains(out, `"formId":"f1"`) {
		t.Fatalf("unexpected log output %q", out)
	}

	if _, err := NewLogger("info", "xml", &buf); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
