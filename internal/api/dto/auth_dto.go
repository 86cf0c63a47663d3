package dto

// CredentialsRequest carries the register and login form fields.
type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}
