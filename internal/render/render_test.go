package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/models"
	"github.com/starford/modelexplorer/internal/testutil"
)

func renderString(t *testing.T, n *html.Node) string {
	t.Helper()
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func TestRenderElementReport(t *testing.T) {
	m, c := testutil.Fixtures()
	tmpl, _ := c.Template("oc")
	elem, _ := m.ByUUID(testutil.PatrolID)

	n, err := NewEngine(m).Render(context.Background(), tmpl, elem)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := renderString(t, n)
	if !strings.Contains(out, `<h1 id="patrol">Patrol</h1>`) {
		t.Errorf("missing heading with auto id: %s", out)
	}
	if !strings.Contains(out, testutil.PatrolID) {
		t.Errorf("missing uuid: %s", out)
	}
	if n.Parent != nil || n.Data != "div" {
		t.Errorf("root must be a detached div")
	}
}

func TestRenderDocumentUsesModelFuncs(t *testing.T) {
	m, _ := testutil.Fixtures()
	tmpl := &models.Template{
		ID:    "doc",
		Flags: models.NewFlagSet(models.FlagDocument),
		Body: "# {{ .Model.Name }}\n\n{{ range elements \"OperationalCapability\" }}- [{{ .Name }}]({{ reportLink \"oc\" . }})\n{{ end }}",
	}
	n, err := NewEngine(m).Render(context.Background(), tmpl, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := renderString(t, n)
	for _, want := range []string{"Coffee Machine", "Patrol", "Rescue", "Escort", "/report/oc?elementUuid=" + testutil.EscortID} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	m, _ := testutil.Fixtures()
	e := NewEngine(m)
	for name, body := range map[string]string{
		"parse":   "{{ .Element.Name ",
		"execute": `{{ element "missing" }}`,
	} {
		_, err := e.Render(context.Background(), &models.Template{ID: name, Body: body}, nil)
		var re *apperr.RenderError
		if !errors.As(err, &re) || re.TemplateID != name {
			t.Errorf("%s: err = %v, want RenderError", name, err)
		}
	}
}

func TestRenderCancelled(t *testing.T) {
	m, c := testutil.Fixtures()
	tmpl, _ := c.Template("overview")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEngine(m).Render(ctx, tmpl, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
