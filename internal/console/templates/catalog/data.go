package catalog

import (
	"html/template"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/OmerTuregun/product-catalog/internal/console/catalog"
	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/helpers"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/partials"
)

// Display holds presentation settings shared by catalog views.
type Display struct {
	CurrencySymbol string
	Locale         language.Tag
	Placeholder    string
}

func (d Display) price(amount float64) string {
	return helpers.Price(amount, d.CurrencySymbol, d.Locale)
}

func (d Display) placeholder() string {
	if strings.TrimSpace(d.Placeholder) == "" {
		return catalog.DefaultPlaceholderImage
	}
	return d.Placeholder
}

// PageData represents the full catalog SSR payload.
type PageData struct {
	Chrome            partials.Chrome
	ShowAdminControls bool
	Flash             string
	Filter            FilterData
	Grid              GridData
	NewProductURL     string
	CategoriesURL     string
}

// FilterData drives the filter form.
type FilterData struct {
	Endpoint   string
	Query      string
	InStock    string
	Categories []catalog.Option
}

// GridData is the product grid fragment.
type GridData struct {
	Endpoint          string
	Cards             []CardView
	ShowAdminControls bool
	Placeholder       string
	Error             string
}

// CardView is one product card.
type CardView struct {
	ID           int64
	Title        string
	Name         []helpers.Segment
	Price        string
	StockLabel   string
	StockTone    string
	CategoryName string
	ImageURL     string
	DetailURL    string
	EditURL      string
	DeleteURL    string
}

// DetailData is the product detail modal.
type DetailData struct {
	Name         string
	Price        string
	StockLabel   string
	StockTone    string
	CategoryName string
	Description  template.HTML
	Carousel     catalog.Carousel
}

// FormData is the create/edit modal.
type FormData struct {
	Title      string
	Mode       string
	Action     string
	Token      string
	Accept     string
	Values     catalog.FormValues
	Categories []catalog.Option
}

// IsEdit reports whether the form updates an existing product.
func (f FormData) IsEdit() bool {
	return f.Mode == catalog.FormEdit.String()
}

// DeleteData is the delete confirmation modal.
type DeleteData struct {
	Name   string
	Action string
}

// CategoryPanelData is the category administration modal.
type CategoryPanelData struct {
	CreateURL  string
	Categories []CategoryRow
}

// CategoryRow is one editable category.
type CategoryRow struct {
	ID        int64
	Name      string
	UpdateURL string
	DeleteURL string
}

// BuildPageData prepares the template payload for SSR rendering. A non-empty
// loadErr renders in place of the grid.
func BuildPageData(chrome partials.Chrome, page *catalog.Page, display Display, loadErr string) PageData {
	base := chrome.BasePath
	data := PageData{
		Chrome:        chrome,
		NewProductURL: helpers.JoinBase(base, "/products/new"),
		CategoriesURL: helpers.JoinBase(base, "/categories"),
	}
	if page == nil {
		data.Grid = GridPayload(base, catalogapi.ProductFilter{}, nil, false, display, loadErr)
		data.Filter = FilterPayload(base, catalogapi.ProductFilter{}, catalog.FilterOptions(nil, 0))
		return data
	}
	data.ShowAdminControls = page.ShowAdminControls()
	data.Filter = FilterPayload(base, page.Filter, page.FilterOptions)
	data.Grid = GridPayload(base, page.Filter, page.Products, data.ShowAdminControls, display, loadErr)
	return data
}

// FilterPayload renders the filter form state.
func FilterPayload(basePath string, filter catalogapi.ProductFilter, options []catalog.Option) FilterData {
	data := FilterData{
		Endpoint:   helpers.JoinBase(basePath, "/products/grid"),
		Query:      filter.Query,
		Categories: options,
	}
	if filter.InStock != nil {
		data.InStock = strconv.FormatBool(*filter.InStock)
	}
	return data
}

// GridPayload converts products into cards. The search term is highlighted in card titles.
func GridPayload(basePath string, filter catalogapi.ProductFilter, products []catalogapi.ProductSummary, admin bool, display Display, errMsg string) GridData {
	grid := GridData{
		Endpoint:          helpers.JoinBase(basePath, "/products/grid"),
		ShowAdminControls: admin,
		Placeholder:       display.placeholder(),
		Error:             errMsg,
		Cards:             make([]CardView, 0, len(products)),
	}
	for _, p := range products {
		image := p.PrimaryImageURL
		if strings.TrimSpace(image) == "" {
			image = grid.Placeholder
		}
		productPath := "/products/" + strconv.FormatInt(p.ID, 10)
		grid.Cards = append(grid.Cards, CardView{
			ID:           p.ID,
			Title:        p.Name,
			Name:         helpers.Highlight(p.Name, filter.Query),
			Price:        display.price(p.Price),
			StockLabel:   helpers.StockLabel(p.InStock),
			StockTone:    helpers.StockTone(p.InStock),
			CategoryName: p.CategoryName,
			ImageURL:     image,
			DetailURL:    helpers.JoinBase(basePath, productPath+"/details"),
			EditURL:      helpers.JoinBase(basePath, productPath+"/edit"),
			DeleteURL:    helpers.JoinBase(basePath, productPath+"/delete"),
		})
	}
	return grid
}

// DetailPayload prepares the detail modal.
func DetailPayload(detail *catalog.Detail, display Display) DetailData {
	p := detail.Product
	return DetailData{
		Name:         p.Name,
		Price:        display.price(p.Price),
		StockLabel:   helpers.StockLabel(p.InStock),
		StockTone:    helpers.StockTone(p.InStock),
		CategoryName: p.CategoryName,
		Description:  helpers.Markdown(p.Description),
		Carousel:     detail.Carousel,
	}
}

// FormPayload prepares the create/edit modal. token identifies this rendering of the form.
func FormPayload(basePath string, form *catalog.Form, token string) FormData {
	_, target := form.State.Target()
	title := "Add product"
	if form.State.Mode() == catalog.FormEdit {
		title = "Edit product"
	}
	return FormData{
		Title:      title,
		Mode:       form.State.Mode().String(),
		Action:     helpers.JoinBase(basePath, target),
		Token:      token,
		Accept:     acceptImages(),
		Values:     form.Values,
		Categories: form.Options,
	}
}

// DeletePayload prepares the confirmation modal; the action carries the confirmation flag.
func DeletePayload(basePath string, product *catalogapi.ProductDetail) DeleteData {
	return DeleteData{
		Name:   product.Name,
		Action: helpers.JoinBase(basePath, "/products/"+strconv.FormatInt(product.ID, 10)+"?confirm=true"),
	}
}

// CategoryPanelPayload prepares the category administration modal.
func CategoryPanelPayload(basePath string, categories []catalogapi.Category) CategoryPanelData {
	data := CategoryPanelData{
		CreateURL:  helpers.JoinBase(basePath, "/categories"),
		Categories: make([]CategoryRow, 0, len(categories)),
	}
	for _, c := range categories {
		path := helpers.JoinBase(basePath, "/categories/"+strconv.FormatInt(c.ID, 10))
		data.Categories = append(data.Categories, CategoryRow{ID: c.ID, Name: c.Name, UpdateURL: path, DeleteURL: path})
	}
	return data
}

func acceptImages() string {
	exts := make([]string, 0, len(catalogapi.AllowedImageExtensions))
	for _, ext := range catalogapi.AllowedImageExtensions {
		exts = append(exts, "."+ext)
	}
	return strings.Join(exts, ",")
}
