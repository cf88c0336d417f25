// Package httputil holds the JSON helpers shared by all HTTP handlers:
// response writing, the error envelope, and request decoding.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "admin-gateway/pkg/domainerrors"
)

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes v with the given status. Encoding failures are swallowed;
// by then the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded error into the JSON error envelope. Internal
// errors keep their message out of the response; everything a client can act
// on passes through.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := ErrorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.Message = dErrors.MessageOf(err)
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// Decode reads a JSON request body into T. A malformed body yields an
// invalid_input error ready for WriteError.
func Decode[T any](r *http.Request) (T, error) {
	var out T
	if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
		return out, dErrors.Wrap(err, dErrors.CodeInvalidInput, "request body is not valid JSON")
	}
	return out, nil
}
