package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data with the given status. Nil data sends headers only.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// OK writes a 200 JSON response
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Done acknowledges a request that returns nothing but an optional message
func Done(w http.ResponseWriter, message string) {
	OK(w, SuccessResponse{Success: true, Message: message})
}
