package fragment

import (
	"encoding/base64"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/modelexplorer/internal/models"
	"github.com/starford/modelexplorer/internal/navstate"
)

// Home renders the catalog view: model information followed by one article
// per template category.
func (r *Renderer) Home() *html.Node {
	root := el(atom.Main, attrs("id", string(RegionRoot), "class", "responsive"), r.ModelInformation())
	for _, cat := range r.catalog.Categories() {
		root.AppendChild(r.category(cat))
	}
	return root
}

// ModelInformation renders the model name, version and description badge.
func (r *Renderer) ModelInformation() *html.Node {
	info := r.model.Info()
	card := el(atom.Article, attrs("class", "no-elevate center-align"),
		el(atom.H4, nil, text(info.Name)),
	)
	if info.CapellaVersion != "" {
		card.AppendChild(el(atom.P, nil, text("Capella version: "+info.CapellaVersion)))
	}
	if info.Badge != "" {
		src := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(info.Badge))
		card.AppendChild(el(atom.Img, attrs(
			"src", src,
			"alt", "Model description badge",
			"class", "object-scale-down",
		)))
	}
	return card
}

func (r *Renderer) category(cat *models.TemplateCategory) *html.Node {
	grid := el(atom.Div, attrs("class", "grid"))
	for _, tmpl := range cat.Templates {
		grid.AppendChild(templateCard(tmpl, cat.Color))
	}
	bg := ""
	if cat.Color != "" {
		bg = cat.Color + "1"
	}
	return el(atom.Article, attrs("class", bg),
		el(atom.H5, attrs("class", "center-align"), text(cat.Idx+" Reports")),
		grid,
	)
}

func templateCard(tmpl *models.Template, baseColor string) *html.Node {
	var chips []*html.Node
	for _, f := range models.KnownFlags {
		if !tmpl.Flags.Has(f) {
			continue
		}
		switch f {
		case models.FlagExperimental:
			chips = append(chips, chip("experiment", "Experimental", "chip yellow5 black-text", len(chips) == 0))
		case models.FlagStable:
			chips = append(chips, chip("verified_user", "Stable", "chip green5 white-text", len(chips) == 0))
		case models.FlagDocument:
			// Rendered as the header icon below.
		}
	}

	var headerIcon *html.Node
	if tmpl.IsDocument() {
		headerIcon = el(atom.Span, attrs("class", "template-kind document"),
			icon("description", "white-text"),
			el(atom.Div, attrs("class", "tooltip left"), text("Document")),
		)
	} else {
		headerIcon = el(atom.Span, attrs("class", "template-kind multi"),
			icon("file_copy", "white-text"),
			el(atom.Div, attrs("class", "tooltip left"), text("Multi-element template")),
			el(atom.Div, attrs("class", "badge tertiary"), text(strconv.Itoa(tmpl.InstanceCount()))),
		)
	}

	bgColor, headerColor := "primary-container", "primary"
	if baseColor != "" {
		bgColor, headerColor = baseColor+"2", baseColor+"9"
	}

	var chipsContainer *html.Node
	if len(chips) > 0 {
		chipsContainer = el(atom.Div, attrs("class", "scroll no-margin medium-padding"), chips...)
	}

	href := navstate.TemplatePath(tmpl.ID)
	return el(atom.A, append(attrs("id", "template-"+tmpl.ID, "class", "s12 m6 l4 wave"), rootLink(href)...),
		el(atom.Article, attrs("class", bgColor),
			el(atom.Nav, attrs("class", headerColor+" no-margin medium-padding small-round"),
				el(atom.H6, attrs("class", "white-text max"), text(tmpl.Name)),
				headerIcon,
			),
			chipsContainer,
			el(atom.P, attrs("class", "max no-margin medium-padding"), text(tmpl.Description)),
		),
	)
}

func chip(iconName, label, cls string, first bool) *html.Node {
	margin := ""
	if first {
		margin = "no-margin"
	}
	return el(atom.Button, attrs("class", classes(cls, margin)), icon(iconName), el(atom.Span, nil, text(label)))
}
