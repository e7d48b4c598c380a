package ingest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/libroteca/libroteca/internal/library"
)

// RegisterRoutes mounts the upload endpoint. maxUploadMB bounds the
// multipart request body size.
func RegisterRoutes(r chi.Router, coord *Coordinator, maxUploadMB int) {
	r.Post("/api/upload", handleUpload(coord, maxUploadMB))
}

func handleUpload(coord *Coordinator, maxUploadMB int) http.HandlerFunc {
	maxBytes := int64(maxUploadMB) << 20

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			http.Error(w, `{"error":"invalid or oversized upload"}`, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"error":"missing file field"}`, http.StatusBadRequest)
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, `{"error":"reading upload"}`, http.StatusBadRequest)
			return
		}

		draft := draftFromForm(r)

		rec, err := coord.Ingest(r.Context(), header.Filename, content, draft)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrUnsupportedFormat) ||
				errors.Is(err, ErrEmptyDocument) ||
				errors.Is(err, ErrIncompleteMetadata) {
				status = http.StatusBadRequest
			}
			http.Error(w, `{"error":`+strconv.Quote(err.Error())+`}`, status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)
	}
}

func draftFromForm(r *http.Request) library.Draft {
	year, _ := strconv.Atoi(r.FormValue("year"))

	var tags []string
	for _, t := range strings.Split(r.FormValue("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return library.Draft{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Author:      strings.TrimSpace(r.FormValue("author")),
		Year:        year,
		Language:    r.FormValue("language"),
		Category:    r.FormValue("category"),
		Type:        r.FormValue("type"),
		Level:       r.FormValue("level"),
		Description: r.FormValue("description"),
		Tags:        tags,
	}
}
