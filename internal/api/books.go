package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"topicbook/pkg/topicbook"
)

func (h *handler) handleBooks(w http.ResponseWriter, _ *http.Request) {
	if h.books == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	names, err := h.books.List()
	if err != nil {
		h.logger.Error("list books failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "library_error")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *handler) handleBook(w http.ResponseWriter, r *http.Request) {
	if h.books == nil {
		h.writeError(w, http.StatusNotFound, "book_not_found")
		return
	}
	filename, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "book_not_found")
		return
	}
	book, err := h.books.Get(filename)
	if errors.Is(err, topicbook.ErrBookNotFound) {
		h.writeError(w, http.StatusNotFound, "book_not_found")
		return
	}
	if err != nil {
		h.logger.Error("read book failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "library_error")
		return
	}
	writeJSON(w, http.StatusOK, book)
}
