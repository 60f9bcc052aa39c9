// Package parser reads report template definitions: Markdown bodies with a
// YAML frontmatter describing the template.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/modelexplorer/internal/models"
)

var idRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Scope selects the model elements a template is rendered for.
type Scope struct {
	Type string `yaml:"type"`
}

// Definition is a parsed template definition.
type Definition struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Flags       []string `yaml:"flags"`
	Scope       Scope    `yaml:"scope"`
	Body        string   `yaml:"-"`
}

// Validate validates the definition.
func (d *Definition) Validate() error {
	flags := make([]any, len(models.KnownFlags))
	for i, f := range models.KnownFlags {
		flags[i] = string(f)
	}
	if err := validation.ValidateStruct(d,
		validation.Field(&d.ID, validation.Required, validation.Match(idRe)),
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Flags, validation.Each(validation.In(flags...))),
	); err != nil {
		return err
	}
	if !d.IsDocument() && d.Scope.Type == "" {
		return fmt.Errorf("scope.type is required for template %q without the %q flag", d.ID, models.FlagDocument)
	}
	return nil
}

// IsDocument reports whether the definition carries the document flag.
func (d *Definition) IsDocument() bool {
	for _, f := range d.Flags {
		if models.Flag(f) == models.FlagDocument {
			return true
		}
	}
	return false
}

// Template converts the definition into a catalog template without instances.
func (d *Definition) Template(source string) *models.Template {
	flags := make([]models.Flag, len(d.Flags))
	for i, f := range d.Flags {
		flags[i] = models.Flag(f)
	}
	t := &models.Template{
		ID:          d.ID,
		Name:        d.Name,
		Description: strings.TrimSpace(d.Description),
		Category:    d.Category,
		Flags:       models.NewFlagSet(flags...),
		Body:        d.Body,
		Source:      source,
	}
	if !d.IsDocument() {
		t.Scope = d.Scope.Type
	}
	return t
}

// Parse parses and validates a template definition.
func Parse(data []byte) (*Definition, error) {
	fm, body, ok := splitFrontmatter(data)
	if !ok {
		return nil, fmt.Errorf("parser: missing frontmatter")
	}
	var def Definition
	if err := yaml.Unmarshal(fm, &def); err != nil {
		return nil, fmt.Errorf("parser: frontmatter: %w", err)
	}
	def.Body = body
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	return &def, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body.
func splitFrontmatter(data []byte) ([]byte, string, bool) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, "", false
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", false
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")
	return yamlBlock, body, true
}

// Category is an entry of the category index file.
type Category struct {
	Idx   string `yaml:"idx"`
	Color string `yaml:"color"`
}

// ParseCategories parses the ordered category index.
func ParseCategories(data []byte) ([]Category, error) {
	var cats []Category
	if err := yaml.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("parser: categories: %w", err)
	}
	for i := range cats {
		if err := validation.ValidateStruct(&cats[i],
			validation.Field(&cats[i].Idx, validation.Required),
		); err != nil {
			return nil, fmt.Errorf("parser: category %d: %w", i, err)
		}
	}
	return cats, nil
}
