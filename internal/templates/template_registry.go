package templates

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}
	registry.registerCompanionTemplates()
	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

func (tr *TemplateRegistry) registerCompanionTemplates() {
	tr.templates["companion"] = `{{.Header}}
{{if .Package}}
package {{.Package}}
{{end}}{{if .Imports}}
{{range .Imports}}import {{.}}
{{end}}{{end}}
{{.Declaration}} {
{{range $i, $f := .Functions}}{{if $i}}
{{end}}{{template "function" $f}}{{end}}}
`

	tr.templates["function"] = `{{with .Doc}}    /**
{{range .}}     *{{if .}} {{.}}{{end}}
{{end}}     */
{{end}}{{range .Annotations}}    {{.}}
{{end}}    {{.Declaration}}{{if .Body}} {
        {{.Body}}
    }{{end}}
`
}
