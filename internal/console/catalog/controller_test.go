package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OmerTuregun/product-catalog/internal/console/catalog"
	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
)

type fixture struct {
	api        *catalogapi.StaticService
	admin      *catalog.Controller
	viewer     *catalog.Controller
	lightingID int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	api := catalogapi.NewStaticService(catalogapi.StaticConfig{
		AdminUsername: "admin",
		AdminPassword: "secret",
		Categories:    []string{"Lighting", "Furniture"},
	})
	api.AddUser("viewer", "pw", catalogapi.RoleUser)

	adminCreds, err := api.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	adminID, err := api.Me(ctx, adminCreds)
	require.NoError(t, err)
	viewerCreds, err := api.Login(ctx, "viewer", "pw")
	require.NoError(t, err)
	viewerID, err := api.Me(ctx, viewerCreds)
	require.NoError(t, err)

	categories, err := api.Categories(ctx, adminCreds)
	require.NoError(t, err)
	var lighting int64
	for _, c := range categories {
		if c.Name == "Lighting" {
			lighting = c.ID
		}
	}

	return fixture{
		api:        api,
		admin:      catalog.NewController(api, adminCreds, adminID, ""),
		viewer:     catalog.NewController(api, viewerCreds, viewerID, ""),
		lightingID: lighting,
	}
}

func TestLoadPageFetchesCategoriesBeforeProducts(t *testing.T) {
	f := newFixture(t)
	f.api.SeedProduct(catalogapi.ProductDetail{ProductSummary: catalogapi.ProductSummary{Name: "Desk Lamp", CategoryID: &f.lightingID}})

	page, err := f.viewer.LoadPage(context.Background(), catalogapi.ProductFilter{CategoryID: f.lightingID})
	require.NoError(t, err)
	require.False(t, page.ShowAdminControls())
	require.Len(t, page.Products, 1)

	calls := f.api.Calls()
	require.Equal(t, []string{"categories.list", "products.list?category_id=" + strconv.FormatInt(f.lightingID, 10)}, calls[len(calls)-2:])

	require.Len(t, page.FilterOptions, 3)
	require.Equal(t, catalog.Option{Value: "", Label: catalog.AllCategoriesLabel}, page.FilterOptions[0])

	form, err := f.admin.NewForm(context.Background())
	require.NoError(t, err)
	require.Equal(t, "categories.list", f.api.Calls()[len(f.api.Calls())-1])
	require.Len(t, form.Options, 2)
	for i, opt := range form.Options {
		require.Equal(t, page.FilterOptions[i+1].Label, opt.Label, "both widgets list the same categories")
		require.NotEmpty(t, opt.Value)
	}
	var selected []string
	for _, opt := range page.FilterOptions {
		if opt.Selected {
			selected = append(selected, opt.Label)
		}
	}
	require.Equal(t, []string{"Lighting"}, selected)
}

type failingCategories struct {
	catalogapi.Service
	productCalls int
}

func (f *failingCategories) Categories(context.Context, catalogapi.Credentials) ([]catalogapi.Category, error) {
	return nil, &catalogapi.APIError{Status: http.StatusInternalServerError, Message: catalogapi.GenericErrorMessage}
}

func (f *failingCategories) Products(context.Context, catalogapi.Credentials, catalogapi.ProductFilter) ([]catalogapi.ProductSummary, error) {
	f.productCalls++
	return nil, nil
}

func TestLoadPageStopsWhenCategoriesFail(t *testing.T) {
	api := &failingCategories{}
	ctrl := catalog.NewController(api, "c", &catalogapi.Identity{Username: "a", Role: catalogapi.RoleAdmin}, "")

	page, err := ctrl.LoadPage(context.Background(), catalogapi.ProductFilter{})
	require.Error(t, err)
	require.NotNil(t, page)
	require.Zero(t, api.productCalls)
	require.Equal(t, "Request failed", catalog.Message(err))
	require.True(t, page.ShowAdminControls())
}

func TestEditFormPrefillsProductValues(t *testing.T) {
	f := newFixture(t)
	id := f.api.SeedProduct(catalogapi.ProductDetail{
		ProductSummary: catalogapi.ProductSummary{Name: "Desk Lamp", Price: 149.9, InStock: false, CategoryID: &f.lightingID},
		Description:    "Warm light",
	})

	form, err := f.admin.EditForm(context.Background(), id)
	require.NoError(t, err)

	editing, ok := form.State.EditingID()
	require.True(t, ok)
	require.Equal(t, id, editing)
	require.Equal(t, catalog.FormValues{
		Name:        "Desk Lamp",
		Description: "Warm light",
		Price:       "149.9",
		CategoryID:  strconv.FormatInt(f.lightingID, 10),
		InStock:     false,
	}, form.Values)

	for _, opt := range form.Options {
		require.Equal(t, opt.Label == "Lighting", opt.Selected)
	}
}

func TestNewFormStartsInCreateMode(t *testing.T) {
	f := newFixture(t)

	form, err := f.admin.NewForm(context.Background())
	require.NoError(t, err)
	require.Equal(t, catalog.FormCreate, form.State.Mode())
	require.True(t, form.Values.InStock)
	require.Len(t, form.Options, 2)
}

func TestSubmitCreateWithoutImagesMakesNoBackendCall(t *testing.T) {
	f := newFixture(t)
	before := len(f.api.Calls())

	var state catalog.FormState
	state.OpenCreate()
	_, err := f.admin.Submit(context.Background(), state, &catalog.Submission{Name: "Lamp", Price: "10"})
	require.ErrorIs(t, err, catalog.ErrImageRequired)
	require.Len(t, f.api.Calls(), before)
}

func TestSubmitCreateThenUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var state catalog.FormState
	state.OpenCreate()
	id, err := f.admin.Submit(ctx, state, &catalog.Submission{
		Name:       "Lamp",
		Price:      "10",
		CategoryID: strconv.FormatInt(f.lightingID, 10),
		InStock:    true,
		Images:     []catalogapi.ImageUpload{{Filename: "a.jpg", Content: strings.NewReader("x")}},
	})
	require.NoError(t, err)

	state.OpenEdit(id)
	_, err = f.admin.Submit(ctx, state, &catalog.Submission{Name: "Lamp v2", Price: "12", InStock: false})
	require.NoError(t, err)

	detail, err := f.admin.Detail(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Lamp v2", detail.Product.Name)
	require.Len(t, detail.Carousel.Slides, 1)
	require.False(t, detail.Carousel.Slides[0].Placeholder)
}

func TestSubmitSurfacesBackendMessage(t *testing.T) {
	f := newFixture(t)

	var state catalog.FormState
	state.OpenEdit(9999)
	_, err := f.admin.Submit(context.Background(), state, &catalog.Submission{Name: "Ghost", Price: "1"})
	require.Error(t, err)
	require.True(t, catalogapi.IsStatus(err, http.StatusNotFound))
}

func TestViewerCannotMutate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.api.SeedProduct(catalogapi.ProductDetail{ProductSummary: catalogapi.ProductSummary{Name: "Chair"}})

	_, err := f.viewer.NewForm(ctx)
	require.ErrorIs(t, err, catalog.ErrForbidden)
	_, err = f.viewer.EditForm(ctx, id)
	require.ErrorIs(t, err, catalog.ErrForbidden)
	var state catalog.FormState
	state.OpenCreate()
	_, err = f.viewer.Submit(ctx, state, &catalog.Submission{})
	require.ErrorIs(t, err, catalog.ErrForbidden)
	require.ErrorIs(t, f.viewer.Delete(ctx, id, true), catalog.ErrForbidden)
	require.ErrorIs(t, f.viewer.CreateCategory(ctx, "x"), catalog.ErrForbidden)

	_, err = f.viewer.Detail(ctx, id)
	require.NoError(t, err, "viewers may read details")
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.api.SeedProduct(catalogapi.ProductDetail{ProductSummary: catalogapi.ProductSummary{Name: "Chair"}})

	err := f.admin.Delete(ctx, id, false)
	require.True(t, errors.Is(err, catalog.ErrConfirmationRequired))

	product, err := f.admin.ConfirmDelete(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Chair", product.Name)

	require.NoError(t, f.admin.Delete(ctx, id, true))
	products, err := f.admin.Grid(ctx, catalogapi.ProductFilter{})
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestCategoryAdministration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.admin.CreateCategory(ctx, "Garden"))
	categories, err := f.admin.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)

	var garden int64
	for _, c := range categories {
		if c.Name == "Garden" {
			garden = c.ID
		}
	}
	require.NoError(t, f.admin.RenameCategory(ctx, garden, "Outdoor"))
	require.NoError(t, f.admin.DeleteCategory(ctx, garden))

	err = f.admin.CreateCategory(ctx, "Lighting")
	require.Equal(t, "exists", catalog.Message(err))
}
