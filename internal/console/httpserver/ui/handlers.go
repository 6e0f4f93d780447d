package ui

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/OmerTuregun/product-catalog/internal/console/catalog"
	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
	custommw "github.com/OmerTuregun/product-catalog/internal/console/httpserver/middleware"
	"github.com/OmerTuregun/product-catalog/internal/console/templates"
	catalogtpl "github.com/OmerTuregun/product-catalog/internal/console/templates/catalog"
)

const defaultUploadMaxBytes = 10 << 20

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Catalog        catalogapi.Service
	Views          *templates.Engine
	Display        catalogtpl.Display
	CSRFHeader     string
	UploadMaxBytes int64
}

// Handlers exposes HTTP handlers for catalog pages and fragments.
type Handlers struct {
	catalog    catalogapi.Service
	views      *templates.Engine
	display    catalogtpl.Display
	csrfHeader string
	maxUpload  int64
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Views == nil {
		panic("ui: views are required")
	}
	service := deps.Catalog
	if service == nil {
		service = catalogapi.NewStaticService(catalogapi.StaticConfig{})
	}
	maxUpload := deps.UploadMaxBytes
	if maxUpload <= 0 {
		maxUpload = defaultUploadMaxBytes
	}
	return &Handlers{
		catalog:    service,
		views:      deps.Views,
		display:    deps.Display,
		csrfHeader: deps.CSRFHeader,
		maxUpload:  maxUpload,
	}
}

// controller binds the catalog controller to the authenticated user.
func (h *Handlers) controller(w http.ResponseWriter, r *http.Request) (*catalog.Controller, bool) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}
	return catalog.NewController(h.catalog, user.Credentials, user.Identity(), h.display.Placeholder), true
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, view string, data any) {
	templ.Handler(h.views.Component(view, data), templ.WithStatus(status)).ServeHTTP(w, r)
}
