package pages

import "github.com/whisperwall/whisperwall/internal/web/templates/layout"

// HomeData is the data for the home page
type HomeData struct {
	layout.PageData
}

// LoginData is the data for the login page
type LoginData struct {
	layout.PageData
	Username string
	Error    string
}

// RegisterData is the data for the registration page
type RegisterData struct {
	layout.PageData
	Username    string
	Error       string
	FieldErrors map[string]string
}

// SecretsData is the data for the secrets wall
type SecretsData struct {
	layout.PageData
	Secrets []string
}

// SubmitData is the data for the secret submission page
type SubmitData struct {
	layout.PageData
	Mine []string
}
