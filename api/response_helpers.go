package api

import (
	"encoding/json"
	"io"
	"net/http"

	"fhirbin/storage/pools"
)

// RespondJSON writes a JSON response through a pooled buffer; a fresh
// json.Encoder is built for each call.
func RespondJSON(w http.ResponseWriter, code int, payload interface{}) {
	buf := pools.GetBuffer()
	defer pools.PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		response, _ := json.Marshal(payload)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(response)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

// RespondError writes a JSON error response.
func RespondError(w http.ResponseWriter, code int, message string) {
	RespondJSON(w, code, map[string]string{"error": message})
}

// DecodeJSON decodes JSON from a request body.
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(v)
}

// DecodeJSONWithOptions decodes JSON with additional configuration options.
func DecodeJSONWithOptions(r io.Reader, v interface{}, disallowUnknownFields bool) error {
	decoder := json.NewDecoder(r)
	if disallowUnknownFields {
		decoder.DisallowUnknownFields()
	}
	return decoder.Decode(v)
}
