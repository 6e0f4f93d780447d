package catalogapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
)

func newStatic(t *testing.T) (*catalogapi.StaticService, catalogapi.Credentials) {
	t.Helper()
	svc := catalogapi.NewStaticService(catalogapi.StaticConfig{
		AdminUsername: "admin",
		AdminPassword: "secret",
		Categories:    []string{"Lighting", "Furniture", " ", "Lighting"},
	})
	creds, err := svc.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	return svc, creds
}

func TestStaticServiceSeedsAdminAndCategories(t *testing.T) {
	t.Parallel()
	svc, creds := newStatic(t)
	ctx := context.Background()

	identity, err := svc.Me(ctx, creds)
	require.NoError(t, err)
	require.Equal(t, "admin", identity.Username)
	require.True(t, identity.IsAdmin())

	categories, err := svc.Categories(ctx, creds)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Equal(t, "Furniture", categories[0].Name)
	require.Equal(t, "Lighting", categories[1].Name)
}

func TestStaticServiceRejectsUnknownSession(t *testing.T) {
	t.Parallel()
	svc, _ := newStatic(t)

	_, err := svc.Me(context.Background(), "catalog_session=nope")
	require.True(t, catalogapi.IsStatus(err, http.StatusUnauthorized))

	_, err = svc.Login(context.Background(), "admin", "wrong")
	require.Equal(t, "invalid credentials", catalogapi.ErrorMessage(err))
}

func TestStaticServiceRegisterCreatesRegularUser(t *testing.T) {
	t.Parallel()
	svc, _ := newStatic(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "mehmet", "pw"))
	err := svc.Register(ctx, "mehmet", "pw")
	require.True(t, catalogapi.IsStatus(err, http.StatusConflict))
	err = svc.Register(ctx, " ", "pw")
	require.True(t, catalogapi.IsStatus(err, http.StatusBadRequest))

	creds, err := svc.Login(ctx, "mehmet", "pw")
	require.NoError(t, err)
	identity, err := svc.Me(ctx, creds)
	require.NoError(t, err)
	require.Equal(t, catalogapi.RoleUser, identity.Role)

	_, err = svc.CreateProduct(ctx, creds, catalogapi.ProductInput{Name: "x"})
	require.True(t, catalogapi.IsStatus(err, http.StatusForbidden))

	require.NoError(t, svc.Logout(ctx, creds))
	_, err = svc.Me(ctx, creds)
	require.Error(t, err)
}

func TestStaticServiceProductLifecycle(t *testing.T) {
	t.Parallel()
	svc, creds := newStatic(t)
	ctx := context.Background()

	categories, err := svc.Categories(ctx, creds)
	require.NoError(t, err)
	lighting := categories[1]

	_, err = svc.CreateProduct(ctx, creds, catalogapi.ProductInput{Name: "Lamp", Price: "10"})
	require.Equal(t, "at least one image required", catalogapi.ErrorMessage(err))

	_, err = svc.CreateProduct(ctx, creds, catalogapi.ProductInput{
		Name:   "Lamp",
		Price:  "10",
		Images: []catalogapi.ImageUpload{{Filename: "doc.pdf", Content: strings.NewReader("x")}},
	})
	require.Equal(t, "invalid image type", catalogapi.ErrorMessage(err))

	id, err := svc.CreateProduct(ctx, creds, catalogapi.ProductInput{
		Name:        "Desk Lamp",
		Description: "Warm light",
		Price:       "149.899",
		CategoryID:  strconv.FormatInt(lighting.ID, 10),
		InStock:     true,
		Images: []catalogapi.ImageUpload{
			{Filename: "a.jpg", ContentType: "image/jpeg", Content: strings.NewReader("first")},
			{Filename: "b.png", ContentType: "image/png", Content: strings.NewReader("second")},
		},
	})
	require.NoError(t, err)

	detail, err := svc.Product(ctx, creds, id)
	require.NoError(t, err)
	require.Equal(t, 149.9, detail.Price)
	require.Equal(t, lighting.Name, detail.CategoryName)
	require.Len(t, detail.Images, 2)
	require.Equal(t, detail.Images[0], detail.PrimaryImageURL)

	rec := httptest.NewRecorder()
	svc.Media().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, detail.Images[1], nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	body, _ := io.ReadAll(rec.Body)
	require.Equal(t, "second", string(body))

	err = svc.UpdateProduct(ctx, creds, id, catalogapi.ProductInput{
		Name:        "Desk Lamp XL",
		Description: "Warmer",
		Price:       "199",
		CategoryID:  "",
		InStock:     false,
	})
	require.NoError(t, err)

	detail, err = svc.Product(ctx, creds, id)
	require.NoError(t, err)
	require.Equal(t, "Desk Lamp XL", detail.Name)
	require.False(t, detail.InStock)
	require.Nil(t, detail.CategoryID)
	require.Len(t, detail.Images, 2, "update without images keeps existing images")

	require.NoError(t, svc.DeleteProduct(ctx, creds, id))
	_, err = svc.Product(ctx, creds, id)
	require.True(t, catalogapi.IsStatus(err, http.StatusNotFound))
}

func TestStaticServiceProductsFilters(t *testing.T) {
	t.Parallel()
	svc, creds := newStatic(t)
	ctx := context.Background()

	three := int64(3)
	older := svc.SeedProduct(catalogapi.ProductDetail{
		ProductSummary: catalogapi.ProductSummary{Name: "Floor Lamp", InStock: false, CategoryID: &three},
	})
	newer := svc.SeedProduct(catalogapi.ProductDetail{
		ProductSummary: catalogapi.ProductSummary{Name: "Chair", InStock: true},
		Description:    "Pairs with any lamp",
	})

	all, err := svc.Products(ctx, creds, catalogapi.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, newer, all[0].ID, "newest first")

	byQuery, err := svc.Products(ctx, creds, catalogapi.ProductFilter{Query: "LAMP"})
	require.NoError(t, err)
	require.Len(t, byQuery, 2, "query matches name or description")

	byCategory, err := svc.Products(ctx, creds, catalogapi.ProductFilter{CategoryID: 3})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	require.Equal(t, older, byCategory[0].ID)

	yes := true
	inStock, err := svc.Products(ctx, creds, catalogapi.ProductFilter{InStock: &yes})
	require.NoError(t, err)
	require.Len(t, inStock, 1)
	require.Equal(t, newer, inStock[0].ID)

	require.Contains(t, svc.Calls(), "products.list?in_stock=true")
}

func TestStaticServiceCategoryAdministration(t *testing.T) {
	t.Parallel()
	svc, creds := newStatic(t)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, creds, "Garden")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, creds, "Garden")
	require.Equal(t, "exists", catalogapi.ErrorMessage(err))

	id, err := svc.CreateProduct(ctx, creds, catalogapi.ProductInput{
		Name:       "Hose",
		CategoryID: "0",
		Images:     []catalogapi.ImageUpload{{Filename: "h.webp", Content: strings.NewReader("x")}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateProduct(ctx, creds, id, catalogapi.ProductInput{
		Name:       "Hose",
		CategoryID: strconv.FormatInt(created.ID, 10),
	}))

	renamed, err := svc.RenameCategory(ctx, creds, created.ID, "Outdoor")
	require.NoError(t, err)
	require.Equal(t, "Outdoor", renamed.Name)

	detail, err := svc.Product(ctx, creds, id)
	require.NoError(t, err)
	require.NotNil(t, detail.CategoryID)
	require.Equal(t, created.ID, *detail.CategoryID)
	require.Equal(t, "Outdoor", detail.CategoryName)

	require.NoError(t, svc.DeleteCategory(ctx, creds, created.ID))
	detail, err = svc.Product(ctx, creds, id)
	require.NoError(t, err)
	require.Nil(t, detail.CategoryID)
	require.Empty(t, detail.CategoryName)
	err = svc.DeleteCategory(ctx, creds, created.ID)
	require.True(t, catalogapi.IsStatus(err, http.StatusNotFound))
}
