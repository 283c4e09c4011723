package schema

type (
	// LoginForm carries the credentials submitted to the login endpoint.
	LoginForm struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// RegisterForm carries a new account profile.
	RegisterForm struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}

	// Profile represents the authenticated user.
	Profile struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		IsActive  bool   `json:"isActive"`
	}

	// AuthData is the payload returned by register, login and refresh.
	AuthData struct {
		AccessToken string   `json:"accessToken"`
		User        *Profile `json:"user,omitempty"`
	}

	// Response is the envelope used by every credential-issuing endpoint.
	Response[T any] struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    T      `json:"data"`
	}
)

// NewResponse creates a successful response envelope.
func NewResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{Success: true, Message: message, Data: data}
}

// Failure classifies the envelope. A non-zero status is treated as an
// HTTP failure; otherwise success=false is a rejection. It returns nil for
// a successful envelope.
func (r *Response[T]) Failure(status int) error {
	if status != 0 {
		return FromStatus(status, r.Message)
	}
	if !r.Success {
		message := r.Message
		if message == "" {
			message = "request was not successful"
		}
		return NewError(ErrRejected, 0, message)
	}
	return nil
}
