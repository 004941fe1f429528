// package render fills block templates with a row's values
package render

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/taskdoc/internal/models"
	"github.com/desertthunder/taskdoc/internal/shared"
	"github.com/flosch/pongo2/v6"
)

// Output is plain document text, never HTML.
const (
	escapeOff = "{% autoescape off %}"
	escapeEnd = "{% endautoescape %}"
)

// Renderer renders Django/Jinja-style templates with pongo2.
//
// Undefined placeholders render as empty text; templates can supply their own
// fallback with the default filter, e.g. {{ name|default:"Friend" }}.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render loads the template named by ref and executes it with ctx.
//
// Errors wrap [shared.ErrTemplateNotFound], [shared.ErrTemplateSyntax] or [shared.ErrTemplateRender].
func (r *Renderer) Render(ref models.TemplateRef, ctx map[string]any) (string, error) {
	src, err := r.load(ref)
	if err != nil {
		return "", err
	}
	return r.RenderString(src, ctx)
}

// RenderString executes an inline template with ctx.
func (r *Renderer) RenderString(src string, ctx map[string]any) (string, error) {
	tpl, err := compile(src)
	if err != nil {
		return "", err
	}

	out, err := tpl.Execute(pongo2.Context(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrTemplateRender, err)
	}
	return out, nil
}

// Check loads and parses the template named by ref without executing it.
func (r *Renderer) Check(ref models.TemplateRef) error {
	src, err := r.load(ref)
	if err != nil {
		return err
	}
	return r.CheckString(src)
}

// CheckString parses an inline template without executing it.
func (r *Renderer) CheckString(src string) error {
	_, err := compile(src)
	return err
}

// prepare returns the exact source handed to pongo2 for src.
// A file's final newline is not part of the content, so blocks join with exactly one separator.
func prepare(src string) string {
	src = strings.TrimSuffix(strings.TrimSuffix(src, "\n"), "\r")
	return escapeOff + src + escapeEnd
}

func compile(src string) (*pongo2.Template, error) {
	tpl, err := pongo2.FromString(prepare(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTemplateSyntax, err)
	}
	return tpl, nil
}

func (r *Renderer) load(ref models.TemplateRef) (string, error) {
	if ref.Path == "" {
		if ref.Source == "" {
			return "", fmt.Errorf("%w: empty template reference", shared.ErrTemplateNotFound)
		}
		return ref.Source, nil
	}

	data, err := os.ReadFile(ref.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", shared.ErrTemplateNotFound, ref.Path)
		}
		return "", fmt.Errorf("%w: %s: %v", shared.ErrTemplateNotFound, ref.Path, err)
	}
	return string(data), nil
}
