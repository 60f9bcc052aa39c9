package api

import (
	"github.com/starford/modelexplorer/internal/models"
	"github.com/starford/modelexplorer/internal/navstate"
)

// ReportsResponse is the JSON catalog.
type ReportsResponse struct {
	Model             ModelDTO      `json:"model"`
	RenderEnvironment string        `json:"render_environment"`
	Categories        []CategoryDTO `json:"categories"`
}

// ModelDTO describes the loaded model.
type ModelDTO struct {
	Name           string `json:"name" example:"Coffee Machine"`
	Version        string `json:"version,omitempty"`
	CapellaVersion string `json:"capella_version,omitempty" example:"7.0.0"`
}

// CategoryDTO is a template category.
type CategoryDTO struct {
	Idx       string        `json:"idx" example:"Operational Analysis"`
	Color     string        `json:"color,omitempty" example:"blue"`
	Templates []TemplateDTO `json:"templates"`
}

// TemplateDTO is a report template.
type TemplateDTO struct {
	ID          string   `json:"id" example:"oc"`
	Name        string   `json:"name" example:"Operational Capability"`
	Description string   `json:"description,omitempty"`
	Flags       []string `json:"flags"`
	// Instances is omitted for document templates.
	Instances *int   `json:"instances,omitempty"`
	URL       string `json:"url" example:"/report/oc"`
}

func newReportsResponse(info models.ModelInfo, version string, cats []*models.TemplateCategory) ReportsResponse {
	resp := ReportsResponse{
		Model: ModelDTO{
			Name:           info.Name,
			Version:        info.Version,
			CapellaVersion: info.CapellaVersion,
		},
		RenderEnvironment: version,
		Categories:        make([]CategoryDTO, 0, len(cats)),
	}
	for _, cat := range cats {
		c := CategoryDTO{Idx: cat.Idx, Color: cat.Color, Templates: make([]TemplateDTO, 0, len(cat.Templates))}
		for _, t := range cat.Templates {
			c.Templates = append(c.Templates, newTemplateDTO(t))
		}
		resp.Categories = append(resp.Categories, c)
	}
	return resp
}

func newTemplateDTO(t *models.Template) TemplateDTO {
	dto := TemplateDTO{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Flags:       []string{},
		URL:         navstate.TemplatePath(t.ID),
	}
	for _, f := range models.KnownFlags {
		if t.Flags.Has(f) {
			dto.Flags = append(dto.Flags, string(f))
		}
	}
	if !t.IsDocument() {
		n := len(t.Instances)
		dto.Instances = &n
	}
	return dto
}
