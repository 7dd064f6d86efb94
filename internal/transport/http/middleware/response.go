package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-payments-api/internal/domain"
)

// writeJSONError writes a JSON-encoded error response with the correct Content-Type.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// writeAuthError writes the 401 body with its machine-readable rejection code.
func writeAuthError(w http.ResponseWriter, authErr *domain.AuthError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": authErr.Reason,
		"code":    string(authErr.Code),
	})
}
