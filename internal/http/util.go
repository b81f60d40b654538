package httpapi

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK[T any](w http.ResponseWriter, result T) {
	writeJSON(w, http.StatusOK, Ok(result))
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Fail(message))
}

func writeWarn(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Warn(message))
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
