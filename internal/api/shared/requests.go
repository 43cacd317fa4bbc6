package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is shared across requests; validator.Validate caches struct
// metadata internally and is safe for concurrent use.
var validate = validator.New()

// SelfValidator is implemented by request types whose validation rules cannot
// be expressed with struct tags. When a type implements it, ValidateRequest
// calls the method instead of consulting tags.
type SelfValidator interface {
	Validate() error
}

// DecodeJSON decodes the request body into v. Unknown fields are ignored so
// clients can send newer payloads to older servers.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest checks a decoded request, preferring the type's own
// Validate method over `validate` struct tags.
func ValidateRequest(v interface{}) error {
	if sv, ok := v.(SelfValidator); ok {
		return sv.Validate()
	}
	return validate.Struct(v)
}
