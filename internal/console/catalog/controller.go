package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
)

// AllCategoriesLabel is the filter sentinel that clears the category filter.
const AllCategoriesLabel = "All categories"

// Option is one entry of a category selection widget.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Page is everything the catalog page needs on first render.
type Page struct {
	Identity      *catalogapi.Identity
	Filter        catalogapi.ProductFilter
	FilterOptions []Option
	Products      []catalogapi.ProductSummary
}

// ShowAdminControls reports whether create/edit/delete controls render.
func (p *Page) ShowAdminControls() bool {
	return p != nil && p.Identity.IsAdmin()
}

// Detail is the product detail modal content.
type Detail struct {
	Product  *catalogapi.ProductDetail
	Carousel Carousel
}

// FormValues pre-fill the product form.
type FormValues struct {
	Name        string
	Description string
	Price       string
	CategoryID  string
	InStock     bool
}

// Form is the create/edit modal content.
type Form struct {
	State   FormState
	Values  FormValues
	Options []Option
}

// Controller drives one request's view of the catalog for an authenticated
// identity. It holds no state across requests.
type Controller struct {
	api         catalogapi.Service
	creds       catalogapi.Credentials
	identity    *catalogapi.Identity
	placeholder string
}

// NewController binds the backend and the resolved identity for a request.
func NewController(api catalogapi.Service, creds catalogapi.Credentials, identity *catalogapi.Identity, placeholder string) *Controller {
	if placeholder == "" {
		placeholder = DefaultPlaceholderImage
	}
	return &Controller{api: api, creds: creds, identity: identity, placeholder: placeholder}
}

// Identity returns the identity the controller acts for.
func (c *Controller) Identity() *catalogapi.Identity {
	return c.identity
}

// IsAdmin reports whether the identity may mutate the catalog.
func (c *Controller) IsAdmin() bool {
	return c.identity.IsAdmin()
}

// LoadPage fetches categories and then products. When the category fetch
// fails the product fetch is skipped and the partial page is returned with
// the error.
func (c *Controller) LoadPage(ctx context.Context, filter catalogapi.ProductFilter) (*Page, error) {
	page := &Page{Identity: c.identity, Filter: filter}

	categories, err := c.api.Categories(ctx, c.creds)
	if err != nil {
		page.FilterOptions = FilterOptions(nil, filter.CategoryID)
		return page, fmt.Errorf("load categories: %w", err)
	}
	page.FilterOptions = FilterOptions(categories, filter.CategoryID)

	products, err := c.api.Products(ctx, c.creds, filter)
	if err != nil {
		return page, fmt.Errorf("load products: %w", err)
	}
	page.Products = products
	return page, nil
}

// Grid fetches the product list for filter.
func (c *Controller) Grid(ctx context.Context, filter catalogapi.ProductFilter) ([]catalogapi.ProductSummary, error) {
	products, err := c.api.Products(ctx, c.creds, filter)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return products, nil
}

// Detail fetches one product and builds its carousel.
func (c *Controller) Detail(ctx context.Context, id int64) (*Detail, error) {
	product, err := c.api.Product(ctx, c.creds, id)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	return &Detail{Product: product, Carousel: BuildCarousel(product, c.placeholder)}, nil
}

// NewForm opens an empty form in create mode. Categories are fetched again
// so the modal lists any category created since the page loaded.
func (c *Controller) NewForm(ctx context.Context) (*Form, error) {
	if !c.IsAdmin() {
		return nil, ErrForbidden
	}
	categories, err := c.api.Categories(ctx, c.creds)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	form := &Form{
		Values:  FormValues{InStock: true},
		Options: FormOptions(categories, 0),
	}
	form.State.OpenCreate()
	return form, nil
}

// EditForm opens the form in edit mode pre-filled with product id.
func (c *Controller) EditForm(ctx context.Context, id int64) (*Form, error) {
	if !c.IsAdmin() {
		return nil, ErrForbidden
	}
	product, err := c.api.Product(ctx, c.creds, id)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	categories, err := c.api.Categories(ctx, c.creds)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	values := FormValues{
		Name:        product.Name,
		Description: product.Description,
		Price:       strconv.FormatFloat(product.Price, 'f', -1, 64),
		InStock:     product.InStock,
	}
	var selected int64
	if product.CategoryID != nil {
		selected = *product.CategoryID
		values.CategoryID = strconv.FormatInt(selected, 10)
	}
	form := &Form{Values: values, Options: FormOptions(categories, selected)}
	form.State.OpenEdit(product.ID)
	return form, nil
}

// Submit validates sub and issues a create or update for state. It returns
// the id of the affected product.
func (c *Controller) Submit(ctx context.Context, state FormState, sub *Submission) (int64, error) {
	if !c.IsAdmin() {
		return 0, ErrForbidden
	}
	if state.Mode() == FormClosed {
		return 0, fmt.Errorf("submit product: form is closed")
	}
	if err := sub.Validate(state.Mode()); err != nil {
		return 0, err
	}
	if id, ok := state.EditingID(); ok {
		if err := c.api.UpdateProduct(ctx, c.creds, id, sub.Input()); err != nil {
			return 0, fmt.Errorf("update product %d: %w", id, err)
		}
		return id, nil
	}
	id, err := c.api.CreateProduct(ctx, c.creds, sub.Input())
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

// ConfirmDelete loads the product shown in the delete confirmation.
func (c *Controller) ConfirmDelete(ctx context.Context, id int64) (*catalogapi.ProductDetail, error) {
	if !c.IsAdmin() {
		return nil, ErrForbidden
	}
	product, err := c.api.Product(ctx, c.creds, id)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	return product, nil
}

// Delete removes product id once the user confirmed.
func (c *Controller) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !c.IsAdmin() {
		return ErrForbidden
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := c.api.DeleteProduct(ctx, c.creds, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

// Categories lists categories for the administration panel.
func (c *Controller) Categories(ctx context.Context) ([]catalogapi.Category, error) {
	if !c.IsAdmin() {
		return nil, ErrForbidden
	}
	categories, err := c.api.Categories(ctx, c.creds)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return categories, nil
}

// CreateCategory adds a category.
func (c *Controller) CreateCategory(ctx context.Context, name string) error {
	if !c.IsAdmin() {
		return ErrForbidden
	}
	if _, err := c.api.CreateCategory(ctx, c.creds, name); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// RenameCategory renames category id.
func (c *Controller) RenameCategory(ctx context.Context, id int64, name string) error {
	if !c.IsAdmin() {
		return ErrForbidden
	}
	if _, err := c.api.RenameCategory(ctx, c.creds, id, name); err != nil {
		return fmt.Errorf("rename category %d: %w", id, err)
	}
	return nil
}

// DeleteCategory removes category id.
func (c *Controller) DeleteCategory(ctx context.Context, id int64) error {
	if !c.IsAdmin() {
		return ErrForbidden
	}
	if err := c.api.DeleteCategory(ctx, c.creds, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

// FilterOptions builds the filter widget: an empty-value "all" sentinel
// followed by every category, with the active filter selected.
func FilterOptions(categories []catalogapi.Category, active int64) []Option {
	options := make([]Option, 0, len(categories)+1)
	options = append(options, Option{Value: "", Label: AllCategoriesLabel, Selected: active <= 0})
	return append(options, categoryOptions(categories, active)...)
}

// FormOptions builds the product form widget, which has no empty entry.
func FormOptions(categories []catalogapi.Category, selected int64) []Option {
	return categoryOptions(categories, selected)
}

func categoryOptions(categories []catalogapi.Category, selected int64) []Option {
	options := make([]Option, 0, len(categories))
	for _, cat := range categories {
		options = append(options, Option{
			Value:    strconv.FormatInt(cat.ID, 10),
			Label:    cat.Name,
			Selected: selected > 0 && cat.ID == selected,
		})
	}
	return options
}
