package request

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SubmitSecretRequest is the request body for sharing a secret
type SubmitSecretRequest struct {
	Secret string `json:"secret"`
}
