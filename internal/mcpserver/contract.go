package mcpserver

// TemplateFormatContract describes the report template file format for LLM
// clients that author templates.
const TemplateFormatContract = `# Model Explorer Report Template Format

A report template is a Markdown file (` + "`" + `.md` + "`" + `) anywhere below the template
directory. Changes are picked up while the server runs.

## Structure

` + "```" + `markdown
---
id: oc                               # REQUIRED, unique; letters, digits, "_", "." and "-"
name: Operational Capability         # REQUIRED, display name
description: Capabilities of the OA  # OPTIONAL
category: Operational Analysis       # OPTIONAL, defaults to "Other"
flags: [stable]                      # OPTIONAL: experimental, stable, document
scope:
  type: OperationalCapability        # REQUIRED unless flags contain "document"
---

# {{ .Element.Name }}

{{ attr .Element "description" }}
` + "```" + `

## Rules

1. **Frontmatter is mandatory** and must open the file.
2. **Instances.** A template is rendered once per model element whose type equals
   ` + "`" + `scope.type` + "`" + `. Templates flagged ` + "`" + `document` + "`" + ` are rendered exactly once
   without an element; their ` + "`" + `scope` + "`" + ` is ignored.
3. **Body** is a Go text/template producing Markdown (GitHub flavoured). Headings get
   automatic ids and appear in the table of contents.
4. **Data** available to the body:
   - ` + "`" + `.Model` + "`" + ` with Name, Version, CapellaVersion, Description
   - ` + "`" + `.Template` + "`" + ` with ID, Name, Description, Category
   - ` + "`" + `.Element` + "`" + ` with UUID, Name, Type, Attributes (nil for documents)
5. **Functions:** ` + "`" + `elements "Type"` + "`" + `, ` + "`" + `element "uuid"` + "`" + `,
   ` + "`" + `attr .Element "key"` + "`" + `, ` + "`" + `keys .Element.Attributes` + "`" + `,
   ` + "`" + `reportLink "templateID" $element` + "`" + `, ` + "`" + `join` + "`" + `, ` + "`" + `lower` + "`" + `, ` + "`" + `upper` + "`" + `.
6. **Categories** are ordered by ` + "`" + `categories.yaml` + "`" + ` at the template root:

` + "```" + `yaml
- idx: Operational Analysis
  color: blue
- idx: System Analysis
  color: green
` + "```" + `

Invalid templates are skipped and logged; the rest of the catalog stays available.
`
