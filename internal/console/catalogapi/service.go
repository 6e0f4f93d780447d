package catalogapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/OmerTuregun/product-catalog/internal/console/rbac"
)

// GenericErrorMessage is shown when the backend gives no usable reason.
const GenericErrorMessage = "Request failed"

// Role values returned by the backend.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Service exposes the catalog backend operations the console relies on.
// Credentials are the opaque backend session string issued by Login.
type Service interface {
	Login(ctx context.Context, username, password string) (Credentials, error)
	Register(ctx context.Context, username, password string) error
	Logout(ctx context.Context, creds Credentials) error
	Me(ctx context.Context, creds Credentials) (*Identity, error)

	Categories(ctx context.Context, creds Credentials) ([]Category, error)
	CreateCategory(ctx context.Context, creds Credentials, name string) (*Category, error)
	RenameCategory(ctx context.Context, creds Credentials, id int64, name string) (*Category, error)
	DeleteCategory(ctx context.Context, creds Credentials, id int64) error

	Products(ctx context.Context, creds Credentials, filter ProductFilter) ([]ProductSummary, error)
	Product(ctx context.Context, creds Credentials, id int64) (*ProductDetail, error)
	CreateProduct(ctx context.Context, creds Credentials, input ProductInput) (int64, error)
	UpdateProduct(ctx context.Context, creds Credentials, id int64, input ProductInput) error
	DeleteProduct(ctx context.Context, creds Credentials, id int64) error
}

// Credentials carries the backend session cookie(s) in Cookie header form.
type Credentials string

// Empty reports whether no backend session is held.
func (c Credentials) Empty() bool {
	return strings.TrimSpace(string(c)) == ""
}

// Identity is the authenticated backend user.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the identity holds the admin role. Roles compare
// the same way capability checks do, ignoring case and surrounding space.
func (i *Identity) IsAdmin() bool {
	return i != nil && rbac.NormaliseRole(i.Role) == rbac.RoleAdmin
}

// Category is a product grouping.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductSummary is the list representation of a product.
type ProductSummary struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	InStock         bool    `json:"in_stock"`
	CategoryID      *int64  `json:"category_id"`
	CategoryName    string  `json:"category_name"`
	PrimaryImageURL string  `json:"primary_image_url"`
}

// ProductDetail extends the summary with description and ordered image URLs.
type ProductDetail struct {
	ProductSummary
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// ImageUpload is one image file attached to a product submission.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// ProductInput is the multipart payload for create and update.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	CategoryID  string
	InStock     bool
	Images      []ImageUpload
}

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalogapi: backend error (%d): %s", e.Status, e.Message)
}

// ErrNotFound is returned by StaticService for unknown ids; HTTPService
// reports the same condition as an APIError with status 404.
var ErrNotFound = &APIError{Status: http.StatusNotFound, Message: GenericErrorMessage}

// ErrorMessage extracts the user-facing message for err.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return GenericErrorMessage
}

// IsStatus reports whether err is an APIError carrying the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
