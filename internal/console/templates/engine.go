package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/OmerTuregun/product-catalog/internal/console/templates/helpers"
)

//go:embed views/*.html
var viewFS embed.FS

// View names rendered by the console.
const (
	ViewLogin         = "login_page"
	ViewCatalog       = "catalog_page"
	ViewGrid          = "product_grid"
	ViewDetail        = "product_detail"
	ViewForm          = "product_form"
	ViewDelete        = "product_delete"
	ViewCategoryPanel = "category_panel"
)

// Engine renders the embedded html/template views as templ components.
type Engine struct {
	root *template.Template
}

// New parses every embedded view.
func New() (*Engine, error) {
	root, err := template.New("views").Funcs(template.FuncMap{
		"badge": helpers.BadgeClass,
	}).ParseFS(viewFS, "views/*.html")
	if err != nil {
		return nil, fmt.Errorf("templates: parse views: %w", err)
	}
	return &Engine{root: root}, nil
}

// Component binds data to the named view.
func (e *Engine) Component(name string, data any) templ.Component {
	t := e.root.Lookup(name)
	if t == nil {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return fmt.Errorf("templates: unknown view %q", name)
		})
	}
	return templ.FromGoHTML(t, data)
}
