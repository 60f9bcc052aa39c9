// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the report catalog to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/cachekey"
	"github.com/starford/modelexplorer/internal/fragment"
	"github.com/starford/modelexplorer/internal/models"
	"github.com/starford/modelexplorer/internal/navstate"
	"github.com/starford/modelexplorer/internal/reportservice"
	"github.com/starford/modelexplorer/internal/toc"
)

// ContractURI addresses the template format resource.
const ContractURI = "modelexplorer://template-format"

// Reports is the report service used by the tools.
type Reports interface {
	Categories() []*models.TemplateCategory
	Template(id string) (*models.Template, error)
	SearchElements(templateID, text string) ([]models.ElementRef, error)
	Content(ctx context.Context, st navstate.State, expected cachekey.Key) (*reportservice.Result, error)
	Model() models.ModelInfo
}

// Server wraps the MCP server with the explorer tools.
type Server struct {
	mcp     *server.MCPServer
	reports Reports
}

// New creates a new MCP server with all tools registered.
func New(reports Reports, version string) *Server {
	s := &Server{reports: reports}

	s.mcp = server.NewMCPServer(
		"Model Explorer",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_reports",
		mcp.WithDescription("List the report templates of the loaded model, grouped by category."),
	), s.listReports)

	s.mcp.AddTool(mcp.NewTool("search_elements",
		mcp.WithDescription("List the model elements a report template can be rendered for. "+
			"All whitespace separated words of the query must occur in the element name."),
		mcp.WithString("template_id", mcp.Required(), mcp.Description("Template id as returned by list_reports")),
		mcp.WithString("query", mcp.Description("Optional filter text")),
	), s.searchElements)

	s.mcp.AddTool(mcp.NewTool("render_report",
		mcp.WithDescription("Render a report to HTML. Document templates take no element; "+
			"all other templates need the UUID of one of their elements."),
		mcp.WithString("template_id", mcp.Required(), mcp.Description("Template id as returned by list_reports")),
		mcp.WithString("element_uuid", mcp.Description("Model element UUID as returned by search_elements")),
	), s.renderReport)

	s.mcp.AddTool(mcp.NewTool("get_template_contract",
		mcp.WithDescription("Returns the report template file format. "+
			"Read it before writing or editing templates in the template directory."),
	), s.getTemplateContract)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Report Template Format",
			mcp.WithResourceDescription("File format of report templates: YAML frontmatter and a Markdown body."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type reportInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Flags       []string `json:"flags,omitempty"`
	Document    bool     `json:"document"`
	Instances   int      `json:"instances"`
}

type elementInfo struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type renderedReport struct {
	Template string     `json:"template"`
	Element  string     `json:"element,omitempty"`
	Key      string     `json:"render_environment"`
	Cached   bool       `json:"cached"`
	TOC      []toc.Item `json:"toc"`
	HTML     string     `json:"html"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func optionalString(req mcp.CallToolRequest, name string) string {
	v, err := req.RequireString(name)
	if err != nil {
		return ""
	}
	return v
}

func (s *Server) listReports(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := []reportInfo{}
	for _, cat := range s.reports.Categories() {
		for _, t := range cat.Templates {
			info := reportInfo{
				ID:          t.ID,
				Name:        t.Name,
				Description: t.Description,
				Category:    cat.Idx,
				Document:    t.IsDocument(),
				Instances:   t.InstanceCount(),
			}
			for _, f := range models.KnownFlags {
				if t.Flags.Has(f) {
					info.Flags = append(info.Flags, string(f))
				}
			}
			out = append(out, info)
		}
	}
	return jsonResult(out)
}

func (s *Server) searchElements(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateID, err := req.RequireString("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refs, err := s.reports.SearchElements(templateID, optionalString(req, "query"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]elementInfo, 0, len(refs))
	for _, ref := range refs {
		out = append(out, elementInfo{
			UUID: ref.UUID,
			Name: ref.Name,
			URL:  navstate.ToURL(navstate.State{TemplateID: templateID, ElementID: ref.UUID}),
		})
	}
	return jsonResult(out)
}

func (s *Server) renderReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateID, err := req.RequireString("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st := navstate.State{TemplateID: templateID, ElementID: optionalString(req, "element_uuid")}

	res, err := s.reports.Content(ctx, st, "")
	if err != nil {
		var bad *apperr.MalformedNavigationError
		if errors.As(err, &bad) {
			return mcp.NewToolResultError(fmt.Sprintf("%v (use search_elements to find an element_uuid)", err)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	items := toc.Build(res.Body)
	if items == nil {
		items = []toc.Item{}
	}
	out := renderedReport{
		Template: res.Template.ID,
		Key:      res.Key.String(),
		Cached:   res.Cached,
		TOC:      items,
	}
	if res.Element != nil {
		out.Element = res.Element.UUID
	}
	for c := res.Body.FirstChild; c != nil; c = c.NextSibling {
		out.HTML += fragment.String(c)
	}
	return jsonResult(out)
}

func (s *Server) getTemplateContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TemplateFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     TemplateFormatContract,
		},
	}, nil
}
