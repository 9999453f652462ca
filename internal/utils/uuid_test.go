package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-offline-sync/models"
)

func TestUUIDGenerator_Generate(t *testing.T) {
	g := NewUUIDGenerator()

	id := g.Generate()
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("expected a valid uuid, got %q: %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Errorf("expected version 7, got %d", parsed.Version())
	}
	if id == g.Generate() {
		t.Error("expected distinct ids")
	}
}

func TestUUIDGenerator_TemporaryID(t *testing.T) {
	id := NewUUIDGenerator().TemporaryID()

	if !strings.HasPrefix(id, models.TempIDPrefix) {
		t.Errorf("expected %q prefix, got %q", models.TempIDPrefix, id)
	}
	if !models.IsTemporaryID(id) {
		t.Error("expected IsTemporaryID to report true")
	}
}
