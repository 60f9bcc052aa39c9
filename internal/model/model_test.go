package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/modelexplorer/internal/apperr"
)

const sample = `
info:
  name: Coffee Machine
  capella_version: 7.0.0
  badge: <svg/>
elements:
  - uuid: 11111111-1111-1111-1111-111111111111
    name: Patrol
    type: OperationalCapability
    attributes:
      description: Walk around
  - name: "  Rescue "
    type: OperationalCapability
  - name: Brew
    type: SystemFunction
`

func TestParseIndexesElements(t *testing.T) {
	m, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("Len = %d", m.Len())
	}
	if m.Info().Name != "Coffee Machine" || m.Info().Badge != "<svg/>" {
		t.Errorf("info = %+v", m.Info())
	}
	caps := m.ElementsOfType("OperationalCapability")
	if len(caps) != 2 || caps[0].Name != "Patrol" || caps[1].Name != "Rescue" {
		t.Fatalf("caps = %+v", caps)
	}
	e, err := m.ByUUID("11111111-1111-1111-1111-111111111111")
	if err != nil || e.Attributes["description"] != "Walk around" {
		t.Errorf("ByUUID = %+v, %v", e, err)
	}
}

func TestParseDerivesStableUUIDs(t *testing.T) {
	a, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Parse([]byte(sample))
	ra := a.ElementsOfType("OperationalCapability")[1]
	rb := b.ElementsOfType("OperationalCapability")[1]
	if ra.UUID == "" || ra.UUID != rb.UUID {
		t.Errorf("derived uuids differ: %q vs %q", ra.UUID, rb.UUID)
	}
}

func TestParseDuplicateUUID(t *testing.T) {
	doc := "elements:\n  - {uuid: a, name: X, type: T}\n  - {uuid: a, name: Y, type: T}\n"
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected duplicate uuid error")
	}
}

func TestByUUIDNotFound(t *testing.T) {
	m, _ := Parse([]byte(sample))
	_, err := m.ByUUID("missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(p, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Info().CapellaVersion != "7.0.0" {
		t.Errorf("capella version = %q", m.Info().CapellaVersion)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
