// Package templates renders companion types as Kotlin source files.
package templates

import (
	"bytes"
	"path"
	"strings"
	"text/template"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

// DefaultHeader is the first line of every generated file
const DefaultHeader = "// Code generated by suspend-reversal. DO NOT EDIT."

// RenderedFile is a generated Kotlin file
type RenderedFile struct {
	Path      string // slash-separated, relative to the platform output root
	Platform  models.Platform
	Companion string // qualified name of the companion type
	Origin    string // qualified name of the input type
	Content   []byte
}

type companionData struct {
	Header      string
	Package     string
	Imports     []string
	Declaration string
	Functions   []functionData
}

type functionData struct {
	Doc         []string
	Annotations []string
	Declaration string
	Body        string
}

// Renderer turns companion types into Kotlin files. It is safe for
// concurrent use.
type Renderer struct {
	header string
	tmpl   *template.Template
}

// NewRenderer parses the companion templates; an empty header selects
// DefaultHeader.
func NewRenderer(header string) (*Renderer, error) {
	if header == "" {
		header = DefaultHeader
	}
	registry := NewTemplateRegistry()
	root := template.New("companion")
	for _, name := range []string{"companion", "function"} {
		t := root
		if name != root.Name() {
			t = root.New(name)
		}
		if _, err := t.Parse(registry.MustGet(name)); err != nil {
			return nil, errors.WrapTemplateError(name, "parse", err)
		}
	}
	return &Renderer{header: header, tmpl: root}, nil
}

// Header returns the header line written first into every file
func (r *Renderer) Header() string {
	return r.header
}

// IsGenerated reports whether content starts with the renderer's header
func (r *Renderer) IsGenerated(content []byte) bool {
	return bytes.HasPrefix(bytes.TrimPrefix(content, []byte("\uFEFF")), []byte(r.header))
}

// RelativePath returns where the file of c goes below an output root
func RelativePath(c *models.CompanionType) string {
	file := c.Name + ".kt"
	if c.Package == "" {
		return file
	}
	return path.Join(strings.ReplaceAll(c.Package, ".", "/"), file)
}

// Render renders c as a complete Kotlin file
func (r *Renderer) Render(c *models.CompanionType) (*RenderedFile, error) {
	imports := NewImportManager(c.Package, c.Platform)
	imports.AddImports(c.Imports...)

	data := companionData{
		Header:      r.header,
		Package:     c.Package,
		Imports:     imports.Imports(c.ReferencedNames()),
		Declaration: TypeDeclaration(c),
	}
	inInterface := c.Kind == models.KindInterface
	for _, f := range c.Functions() {
		fd := functionData{
			Doc:         DocLines(f.Doc),
			Declaration: FunctionDeclaration(f, inInterface),
		}
		for _, a := range f.Annotations {
			fd.Annotations = append(fd.Annotations, a.String())
		}
		if f.Body != nil {
			fd.Body = f.Body.Statement()
		}
		data.Functions = append(data.Functions, fd)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "companion", data); err != nil {
		return nil, errors.WrapTemplateError("companion", "execute", err).
			WithContext("companion", c.QualifiedName())
	}

	rendered := &RenderedFile{
		Path:      RelativePath(c),
		Platform:  c.Platform,
		Companion: c.QualifiedName(),
		Content:   buf.Bytes(),
	}
	if c.Origin != nil {
		rendered.Origin = c.Origin.QualifiedName()
	}
	return rendered, nil
}
