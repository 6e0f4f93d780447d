package catalog

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
)

var (
	// ErrImageRequired rejects a create submission without images.
	ErrImageRequired = errors.New("catalog: at least one image is required")
	// ErrInvalidImageType rejects files outside the accepted image types.
	ErrInvalidImageType = errors.New("catalog: unsupported image type")
	// ErrDuplicateSubmission rejects a form token that was already accepted.
	ErrDuplicateSubmission = errors.New("catalog: duplicate submission")
	// ErrForbidden rejects mutations from non-admin identities.
	ErrForbidden = errors.New("catalog: admin role required")
	// ErrConfirmationRequired rejects deletes without explicit confirmation.
	ErrConfirmationRequired = errors.New("catalog: delete not confirmed")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists field problems found before any backend call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, " ")
}

// Submission is a product form post.
type Submission struct {
	Token       string `validate:"omitempty,uuid4"`
	Name        string `validate:"required,max=255"`
	Description string `validate:"max=10000"`
	Price       string `validate:"required,numeric"`
	CategoryID  string `validate:"omitempty,number"`
	InStock     bool
	Images      []catalogapi.ImageUpload `validate:"-"`

	files []multipart.File
}

// ReadSubmission parses a multipart product form. Callers must Close the
// returned submission to release uploaded files.
func ReadSubmission(r *http.Request, maxBytes int64) (*Submission, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("parse product form: %w", err)
	}
	sub := &Submission{
		Token:       strings.TrimSpace(r.FormValue("submission_token")),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: r.FormValue("description"),
		Price:       strings.TrimSpace(r.FormValue("price")),
		CategoryID:  strings.TrimSpace(r.FormValue("category_id")),
		InStock:     parseCheckbox(r.FormValue("in_stock")),
	}
	if r.MultipartForm == nil {
		return sub, nil
	}
	for _, header := range r.MultipartForm.File["images"] {
		if header == nil || header.Filename == "" {
			continue
		}
		file, err := header.Open()
		if err != nil {
			_ = sub.Close()
			return nil, fmt.Errorf("open upload %q: %w", header.Filename, err)
		}
		sub.files = append(sub.files, file)
		sub.Images = append(sub.Images, catalogapi.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     file,
		})
	}
	return sub, nil
}

// Close releases any opened upload files.
func (s *Submission) Close() error {
	var errs []error
	for _, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.files = nil
	return errors.Join(errs...)
}

// Validate checks the submission locally for the given form mode.
func (s *Submission) Validate(mode FormMode) error {
	if mode == FormCreate && len(s.Images) == 0 {
		return ErrImageRequired
	}
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
		for _, fe := range fieldErrs {
			verr.Fields[fe.Field()] = fieldMessage(fe)
		}
		return verr
	}
	if price, err := strconv.ParseFloat(s.Price, 64); err != nil || price < 0 {
		return &ValidationError{Fields: map[string]string{"Price": "Price must be zero or more."}}
	}
	for _, img := range s.Images {
		if _, ok := catalogapi.ImageExtension(img.Filename); !ok {
			return ErrInvalidImageType
		}
	}
	return nil
}

// Input converts the submission to a backend payload.
func (s *Submission) Input() catalogapi.ProductInput {
	return catalogapi.ProductInput{
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		CategoryID:  s.CategoryID,
		InStock:     s.InStock,
		Images:      s.Images,
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "required" {
			return "Name is required."
		}
		return "Name is too long."
	case "Description":
		return "Description is too long."
	case "Price":
		if fe.Tag() == "required" {
			return "Price is required."
		}
		return "Price must be a number."
	case "CategoryID":
		return "Select a valid category."
	case "Token":
		return "The form has expired, reopen it and try again."
	}
	return fmt.Sprintf("%s is invalid.", fe.Field())
}

func parseCheckbox(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
