package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the same error envelope the handlers use:
// {"error":{"code":"...","message":"..."}}.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]map[string]string{
		"error": {"code": code, "message": message},
	}
	_ = json.NewEncoder(w).Encode(body)
}
