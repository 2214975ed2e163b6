package handlers

import (
	"errors"
	"log"
	"net/http"

	"simple-budget/internal/storage"
)

// respondError translates a storage or rendering failure into an HTTP
// response. Malformed ids are the client's fault, missing records are 404,
// everything else is a 500 with a generic body. The underlying error is
// logged here and never shown to the client.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidID):
		log.Printf("Bad request: %v", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		log.Printf("Not found: %v", err)
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		log.Printf("Internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
