package login

import (
	"encoding/json"

	"github.com/gignut/logindrill/internal/accounts"
)

const (
	// Path is the login route, relative to the target base URL.
	Path = "/api/v1/auth/login"
	// ContentType is the media type of the request payload.
	ContentType = "application/json"
)

// Request is the outbound login payload.
type Request struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewRequest builds the payload for one credential.
func NewRequest(cred accounts.Credential) Request {
	return Request{Email: cred.Email, Password: cred.Password}
}

// MarshalBody encodes the payload as the wire JSON body.
func (r Request) MarshalBody() ([]byte, error) {
	return json.Marshal(r)
}
