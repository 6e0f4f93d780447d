package catalog

import (
	"errors"

	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
)

// Message returns the text shown to the user in the blocking alert for err.
func Message(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrImageRequired):
		return "Please select at least one image."
	case errors.Is(err, ErrInvalidImageType):
		return "Only jpg, jpeg, png, webp and gif images are accepted."
	case errors.Is(err, ErrDuplicateSubmission):
		return "This form was already submitted."
	case errors.Is(err, ErrForbidden):
		return "Only administrators can change the catalog."
	case errors.Is(err, ErrConfirmationRequired):
		return "Deletion must be confirmed."
	case errors.As(err, &verr):
		return verr.Error()
	}
	return catalogapi.ErrorMessage(err)
}
