package auth

// Account is the backend's user record.
type Account struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	ProfilePicURL string `json:"profile_pic_url"`
	UUID          string `json:"uuid"`
	CreatedAt     string `json:"created_at"`
}

// CreateAccountRequest is the body of POST /users. UUID is filled in from the
// identity provider after sign-up; any caller-supplied value is discarded.
type CreateAccountRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Password      string `json:"password"`
	ProfilePicURL string `json:"profile_pic_url"`
	UUID          string `json:"uuid"`
}

// UpdateAccountRequest is the body of PUT /users/{uuid}.
type UpdateAccountRequest struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	ProfilePicURL string `json:"profile_pic_url"`
	UUID          string `json:"uuid"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifiedPayload struct {
	Verified bool `json:"verified"`
}
