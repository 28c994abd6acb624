package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/matzehuels/acknowledge/pkg/errors"
	"github.com/matzehuels/acknowledge/pkg/model"
)

// FileName is the default output file name.
const FileName = "ACKNOWLEDGEMENTS.md"

//go:embed template.md
var defaultTemplate string

// Renderer executes one parsed template.
type Renderer struct {
	tmpl *template.Template
}

// New parses src as a document template. An empty src selects the default
// template.
func New(src string) (*Renderer, error) {
	if src == "" {
		src = defaultTemplate
	}
	tmpl, err := template.New("acknowledgements").Funcs(Funcs()).Parse(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse template")
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Load reads and parses a custom template file.
func Load(path string) (*Renderer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read template %s", path)
	}
	return New(string(data))
}

// Render writes the document for m to w.
func (r *Renderer) Render(w io.Writer, m *model.Model) error {
	if err := r.tmpl.Execute(w, m); err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return nil
}

// Bytes renders the document for m.
func (r *Renderer) Bytes(m *model.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Markdown renders m with the default template.
func Markdown(m *model.Model) ([]byte, error) {
	r, err := New("")
	if err != nil {
		return nil, err
	}
	return r.Bytes(m)
}

// Funcs returns the template helpers.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"plural":  Plural,
		"name":    Name,
		"mention": Mention,
		"link":    Link,
		"join":    strings.Join,
		"cell":    Cell,
	}
}

var cellEscaper = strings.NewReplacer("\\", "\\\\", "|", "\\|", "\n", " ", "\r", "")

// Cell escapes s for use inside a markdown table cell.
func Cell(s string) string { return cellEscaper.Replace(s) }

// Plural returns singular when n is 1 and plural otherwise.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// Mention formats p as a GitHub @-mention. People without a GitHub
// profile are written by name.
func Mention(p model.Person) string {
	if strings.HasPrefix(p.ProfileURL, "https://github.com/") {
		return "@" + p.Identity
	}
	return p.Identity
}

// Link formats p as a markdown link to their profile, or by name when no
// profile is known.
func Link(p model.Person) string {
	if p.ProfileURL == "" {
		return p.Identity
	}
	return fmt.Sprintf("[%s](%s)", p.Identity, p.ProfileURL)
}

// Name is Mention when mention is set, Link otherwise.
func Name(p model.Person, mention bool) string {
	if mention {
		return Mention(p)
	}
	return Link(p)
}
