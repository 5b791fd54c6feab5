package loader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formtree/internal/openapi/loader"
	pkgopenapi "github.com/goliatone/go-formtree/pkg/openapi"
)

const minimalSpec = `openapi: 3.0.3
info: {title: t, version: "1"}
paths: {}
`

func TestLoaderSources(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "api.yaml")
	if err := os.WriteFile(path, []byte(minimalSpec), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(minimalSpec))
	}))
	t.Cleanup(server.Close)

	l := loader.New(pkgopenapi.NewLoaderOptions(
		pkgopenapi.WithFileSystem(fstest.MapFS{"specs/api.yaml": {Data: []byte(minimalSpec)}}),
		pkgopenapi.WithHTTPFallback(0),
	))

	for _, src := range []pkgopenapi.Source{
		pkgopenapi.SourceFromFile(path),
		pkgopenapi.SourceFromFS("specs/api.yaml"),
		pkgopenapi.SourceFromURL(server.URL + "/api.yaml"),
	} {
		doc, err := l.Load(ctx, src)
		if err != nil {
			t.Fatalf("load %s: %v", src.Kind(), err)
		}
		if string(doc.Raw()) != minimalSpec {
			t.Fatalf("%s: unexpected payload %q", src.Kind(), doc.Raw())
		}
		if doc.Location() != src.Location() {
			t.Fatalf("%s: location %q, want %q", src.Kind(), doc.Location(), src.Location())
		}
	}

	if _, err := l.Load(ctx, pkgopenapi.SourceFromURL(server.URL+"/missing")); err == nil {
		t.Fatalf("expected error for 404 response")
	}
	if _, err := l.Load(ctx, pkgopenapi.SourceFromFS("nope.yaml")); err == nil {
		t.Fatalf("expected error for missing fs entry")
	}
}

func TestLoaderHTTPDisabledByDefault(t *testing.T) {
	t.Parallel()

	l := loader.New(pkgopenapi.NewLoaderOptions())
	_, err := l.Load(context.Background(), pkgopenapi.SourceFromURL("https://example.com/api.yaml"))
	if !errors.Is(err, loader.ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}
}

func TestParseSource(t *testing.T) {
	t.Parallel()

	src, err := pkgopenapi.ParseSource("HTTPS://example.com/api.json")
	if err != nil || src.Kind() != pkgopenapi.SourceKindURL {
		t.Fatalf("expected url source, got %v, %v", src, err)
	}
	src, err = pkgopenapi.ParseSource("./specs/../api.yaml")
	if err != nil || src.Kind() != pkgopenapi.SourceKindFile || src.Location() != "api.yaml" {
		t.Fatalf("expected cleaned file source, got %v, %v", src, err)
	}
	if _, err := pkgopenapi.ParseSource("  "); err == nil {
		t.Fatalf("expected error for empty source")
	}
}
