// Package model loads the model served by the explorer from a YAML export.
package model

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/models"
)

// elementNamespace seeds the UUIDs of elements exported without one.
var elementNamespace = uuid.MustParse("5b1e1c34-3f0e-4c58-8d52-0c7f4f1f7a10")

type document struct {
	Info     models.ModelInfo  `yaml:"info"`
	Elements []*models.Element `yaml:"elements"`
}

// Model is an immutable, indexed model.
type Model struct {
	info     models.ModelInfo
	elements []*models.Element
	byUUID   map[string]*models.Element
	byType   map[string][]*models.Element
}

var _ models.ModelLookup = (*Model)(nil)

// Load reads a model export from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a model from YAML data.
//
// Elements without a UUID get one derived from their type and name, so the
// same export always yields the same addresses.
func Parse(data []byte) (*Model, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("model: parse: %w", err)
	}
	m := &Model{
		info:   doc.Info,
		byUUID: make(map[string]*models.Element, len(doc.Elements)),
		byType: make(map[string][]*models.Element),
	}
	for i, e := range doc.Elements {
		if e == nil {
			continue
		}
		e.Name = strings.TrimSpace(e.Name)
		if e.UUID == "" {
			e.UUID = uuid.NewSHA1(elementNamespace, []byte(e.Type+"/"+e.Name)).String()
		}
		if _, dup := m.byUUID[e.UUID]; dup {
			return nil, fmt.Errorf("model: element %d: duplicate uuid %s", i, e.UUID)
		}
		m.byUUID[e.UUID] = e
		m.byType[e.Type] = append(m.byType[e.Type], e)
		m.elements = append(m.elements, e)
	}
	if m.info.Name == "" {
		m.info.Name = "Unnamed model"
	}
	return m, nil
}

// ByUUID returns the element with the given UUID.
func (m *Model) ByUUID(id string) (*models.Element, error) {
	if e, ok := m.byUUID[id]; ok {
		return e, nil
	}
	return nil, apperr.NotFound("model element", id)
}

// ElementsOfType returns the elements of typ in export order.
func (m *Model) ElementsOfType(typ string) []*models.Element {
	return m.byType[typ]
}

// Info returns the model metadata.
func (m *Model) Info() models.ModelInfo {
	return m.info
}

// Len returns the number of elements.
func (m *Model) Len() int {
	return len(m.elements)
}
