package auth

import (
	"github.com/OmerTuregun/product-catalog/internal/console/templates/helpers"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/partials"
)

// Views accepted by the auth page.
const (
	ViewLogin    = "login"
	ViewRegister = "register"
)

// PageData encapsulates rendering state for the sign-in and registration screen.
type PageData struct {
	Chrome         partials.Chrome
	View           string
	Username       string
	Message        string
	Error          string
	LoginURL       string
	RegisterURL    string
	LoginAction    string
	RegisterAction string
}

// BuildPageData resolves URLs for the auth page under basePath. Unknown views fall back to login.
func BuildPageData(chrome partials.Chrome, view string) PageData {
	if view != ViewRegister {
		view = ViewLogin
	}
	base := chrome.BasePath
	return PageData{
		Chrome:         chrome,
		View:           view,
		LoginURL:       helpers.JoinBase(base, "/login?view=login"),
		RegisterURL:    helpers.JoinBase(base, "/login?view=register"),
		LoginAction:    helpers.JoinBase(base, "/login"),
		RegisterAction: helpers.JoinBase(base, "/register"),
	}
}

// IsRegister reports whether the registration form is shown.
func (p PageData) IsRegister() bool {
	return p.View == ViewRegister
}
