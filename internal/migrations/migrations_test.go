package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsHaveUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		t.Fatalf("read embedded dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	for _, e := range entries {
		raw, err := fs.ReadFile(files, dir+"/"+e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		s := string(raw)
		if !strings.Contains(s, "-- +goose Up") || !strings.Contains(s, "-- +goose Down") {
			t.Fatalf("%s: missing goose annotations", e.Name())
		}
	}
}

func TestSchemaEnforcesProviderCallIDUniqueness(t *testing.T) {
	raw, err := fs.ReadFile(files, "sql/00001_init.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	up, _, _ := strings.Cut(string(raw), "-- +goose Down")
	if !strings.Contains(up, "provider_call_id TEXT UNIQUE") {
		t.Fatalf("provider_call_id must be unique")
	}
}
