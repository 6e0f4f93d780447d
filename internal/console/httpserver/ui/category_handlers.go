package ui

import (
	"net/http"
	"strings"

	"github.com/OmerTuregun/product-catalog/internal/console/templates"
	catalogtpl "github.com/OmerTuregun/product-catalog/internal/console/templates/catalog"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/helpers"
)

const categoryIDParam = "categoryID"

// CategoryPanel renders the category administration modal.
func (h *Handlers) CategoryPanel(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	categories, err := ctrl.Categories(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	payload := catalogtpl.CategoryPanelPayload(helpers.BasePath(r.Context()), categories)
	h.render(w, r, http.StatusOK, templates.ViewCategoryPanel, payload)
}

// CreateCategory adds a category and refreshes the page.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not parse form", http.StatusBadRequest)
		return
	}
	if err := ctrl.CreateCategory(r.Context(), strings.TrimSpace(r.PostFormValue("name"))); err != nil {
		fail(w, r, err)
		return
	}
	referenceDataChanged(w, r, "Category created.")
}

// RenameCategory renames a category and refreshes the page.
func (h *Handlers) RenameCategory(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, categoryIDParam)
	if err != nil {
		badID(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not parse form", http.StatusBadRequest)
		return
	}
	if err := ctrl.RenameCategory(r.Context(), id, strings.TrimSpace(r.PostFormValue("name"))); err != nil {
		fail(w, r, err)
		return
	}
	referenceDataChanged(w, r, "Category renamed.")
}

// DeleteCategory removes a category and refreshes the page.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, categoryIDParam)
	if err != nil {
		badID(w)
		return
	}
	if err := ctrl.DeleteCategory(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	referenceDataChanged(w, r, "Category deleted.")
}
