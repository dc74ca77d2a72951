package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"strings"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handler] encode response: %v", err)
	}
}

// WriteError writes a JSON error body with the given status code.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// IsWorkbookFilename reports whether the filename has an .xlsx extension,
// case-insensitively. Only the OOXML container is supported; legacy .xls
// files do not carry embedded pictures the same way.
func IsWorkbookFilename(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}
