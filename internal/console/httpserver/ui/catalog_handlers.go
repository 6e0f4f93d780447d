package ui

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OmerTuregun/product-catalog/internal/console/catalog"
	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
	custommw "github.com/OmerTuregun/product-catalog/internal/console/httpserver/middleware"
	"github.com/OmerTuregun/product-catalog/internal/console/observability"
	"github.com/OmerTuregun/product-catalog/internal/console/templates"
	catalogtpl "github.com/OmerTuregun/product-catalog/internal/console/templates/catalog"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/helpers"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/partials"
)

const (
	productIDParam = "productID"
	pageTitle      = "Products"
)

// CatalogPage renders the catalog with SSR: categories first, then products.
func (h *Handlers) CatalogPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	filter := catalogapi.ParseProductFilter(r.URL.Query())
	page, err := ctrl.LoadPage(ctx, filter)
	loadErr := ""
	if err != nil {
		observability.FromContext(ctx).Warn("catalog: page load failed", zap.Error(err))
		loadErr = catalog.Message(err)
	}

	data := catalogtpl.BuildPageData(partials.BuildChrome(ctx, pageTitle, h.csrfHeader), page, h.display, loadErr)
	if sess, ok := custommw.SessionFromContext(ctx); ok {
		data.Flash = sess.PopFlash()
	}
	h.render(w, r, http.StatusOK, templates.ViewCatalog, data)
}

// ProductGrid re-renders the whole grid for the submitted filters.
func (h *Handlers) ProductGrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	filter := catalogapi.ParseProductFilter(r.URL.Query())
	products, err := ctrl.Grid(ctx, filter)
	if err != nil {
		fail(w, r, err)
		return
	}

	basePath := helpers.BasePath(ctx)
	if encoded := filter.Encode(); encoded != "" {
		w.Header().Set("HX-Replace-Url", basePath+"?"+encoded)
	} else {
		w.Header().Set("HX-Replace-Url", basePath)
	}
	grid := catalogtpl.GridPayload(basePath, filter, products, ctrl.IsAdmin(), h.display, "")
	h.render(w, r, http.StatusOK, templates.ViewGrid, grid)
}

// ProductDetail renders the detail modal.
func (h *Handlers) ProductDetail(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, productIDParam)
	if err != nil {
		badID(w)
		return
	}

	detail, err := ctrl.Detail(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, templates.ViewDetail, catalogtpl.DetailPayload(detail, h.display))
}

// NewProductForm opens the form in create mode.
func (h *Handlers) NewProductForm(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	form, err := ctrl.NewForm(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	h.renderForm(w, r, form)
}

// EditProductForm opens the form pre-filled with the product.
func (h *Handlers) EditProductForm(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, productIDParam)
	if err != nil {
		badID(w)
		return
	}
	form, err := ctrl.EditForm(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.renderForm(w, r, form)
}

func (h *Handlers) renderForm(w http.ResponseWriter, r *http.Request, form *catalog.Form) {
	payload := catalogtpl.FormPayload(helpers.BasePath(r.Context()), form, uuid.NewString())
	h.render(w, r, http.StatusOK, templates.ViewForm, payload)
}

// CreateProduct handles the create form submission.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var state catalog.FormState
	state.OpenCreate()
	h.submitProduct(w, r, state)
}

// UpdateProduct handles the edit form submission.
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, productIDParam)
	if err != nil {
		badID(w)
		return
	}
	var state catalog.FormState
	state.OpenEdit(id)
	h.submitProduct(w, r, state)
}

func (h *Handlers) submitProduct(w http.ResponseWriter, r *http.Request, state catalog.FormState) {
	ctx := r.Context()
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	sub, err := catalog.ReadSubmission(r, h.maxUpload)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer func() {
		if err := sub.Close(); err != nil {
			observability.FromContext(ctx).Warn("catalog: close uploads", zap.Error(err))
		}
	}()

	sess, hasSession := custommw.SessionFromContext(ctx)
	if hasSession && !sess.ClaimSubmission(sub.Token) {
		fail(w, r, catalog.ErrDuplicateSubmission)
		return
	}

	id, err := ctrl.Submit(ctx, state, sub)
	if err != nil {
		if hasSession {
			sess.ReleaseSubmission(sub.Token)
		}
		fail(w, r, err)
		return
	}

	observability.FromContext(ctx).Info("catalog: product saved",
		zap.Int64("product_id", id),
		zap.String("mode", state.Mode().String()),
		zap.Int("images", len(sub.Images)),
	)
	mutationSucceeded(w, "Product saved.")
}

// ConfirmDeleteProduct renders the delete confirmation modal.
func (h *Handlers) ConfirmDeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, productIDParam)
	if err != nil {
		badID(w)
		return
	}
	product, err := ctrl.ConfirmDelete(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, templates.ViewDelete, catalogtpl.DeletePayload(helpers.BasePath(r.Context()), product))
}

// DeleteProduct removes a product once confirm=true is present.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, productIDParam)
	if err != nil {
		badID(w)
		return
	}
	if err := ctrl.Delete(ctx, id, parseConfirm(r)); err != nil {
		fail(w, r, err)
		return
	}
	observability.FromContext(ctx).Info("catalog: product deleted", zap.Int64("product_id", id))
	mutationSucceeded(w, "Product deleted.")
}
