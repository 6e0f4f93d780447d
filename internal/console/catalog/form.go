package catalog

import "strconv"

// FormMode is the product form lifecycle state.
type FormMode int

const (
	// FormClosed means no product form is shown.
	FormClosed FormMode = iota
	// FormCreate means the form submits a new product.
	FormCreate
	// FormEdit means the form updates an existing product.
	FormEdit
)

func (m FormMode) String() string {
	switch m {
	case FormCreate:
		return "create"
	case FormEdit:
		return "edit"
	default:
		return "closed"
	}
}

// FormState tracks which product, if any, the form is editing. The editing
// id is only meaningful in FormEdit and is cleared on every other transition.
type FormState struct {
	mode      FormMode
	editingID int64
}

// OpenCreate switches to create mode.
func (s *FormState) OpenCreate() {
	s.mode = FormCreate
	s.editingID = 0
}

// OpenEdit switches to edit mode for product id.
func (s *FormState) OpenEdit(id int64) {
	s.mode = FormEdit
	s.editingID = id
}

// Close resets the form.
func (s *FormState) Close() {
	s.mode = FormClosed
	s.editingID = 0
}

// Mode returns the current mode.
func (s FormState) Mode() FormMode {
	return s.mode
}

// EditingID returns the product being edited, if in edit mode.
func (s FormState) EditingID() (int64, bool) {
	if s.mode != FormEdit {
		return 0, false
	}
	return s.editingID, true
}

// Target returns the console method and path the form submits to,
// relative to the console base path.
func (s FormState) Target() (method, path string) {
	if id, ok := s.EditingID(); ok {
		return "PUT", "/products/" + strconv.FormatInt(id, 10)
	}
	return "POST", "/products"
}
