package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/causewayhq/causeway/internal/auth"
	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/store"
	"github.com/causewayhq/causeway/internal/uploads"
)

// uploadFormField is the multipart field carrying the file.
const uploadFormField = "file"

// multipartOverhead leaves room for boundaries and form fields beyond the
// file size cap.
const multipartOverhead = 1 << 20

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	items, total, err := s.store.ListUploads(r.Context(), limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Upload]{
		Items: items, Total: total, Limit: limit, Offset: offset,
	})
}

func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxBytes()+multipartOverhead)

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(w, r, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge)
			return
		}
		RespondError(w, r, http.StatusBadRequest, ErrValidation,
			"multipart form with a "+uploadFormField+" field is required")
		return
	}
	defer file.Close()

	saved, err := s.uploads.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, uploads.ErrTooLarge) {
			RespondError(w, r, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge)
			return
		}
		respondStoreError(w, r, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	up := &domain.Upload{
		ID:          domain.NewID(),
		Name:        uploads.SanitizeFilename(header.Filename),
		StoredName:  saved.StoredName,
		ContentType: contentType,
		SizeBytes:   saved.SizeBytes,
		SHA256:      saved.SHA256,
		UploadedBy:  p.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateUpload(r.Context(), up); err != nil {
		// No metadata row, no file: drop the blob we just wrote.
		if rmErr := s.uploads.Remove(saved.StoredName); rmErr != nil {
			log.WithComponentFromContext(r.Context(), "api").Warn().Err(rmErr).
				Str("stored_name", saved.StoredName).
				Msg("orphaned upload cleanup failed")
		}
		respondStoreError(w, r, err)
		return
	}

	log.WithComponentFromContext(r.Context(), "api").Info().
		Str("event", "upload.stored").
		Str("upload_id", up.ID).
		Str("stored_name", up.StoredName).
		Int64("size_bytes", up.SizeBytes).
		Msg("upload stored")

	writeJSON(w, r, http.StatusCreated, up)
}

func (s *Server) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetUploadByStoredName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.serveUploadFile(w, r, rec)
}

// handleDeleteUpload accepts either the record ID or the stored name, since
// both are what listings and serve URLs hand out.
func (s *Server) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rec, err := s.store.GetUploadByID(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		rec, err = s.store.GetUploadByStoredName(r.Context(), name)
	}
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	if _, err := s.store.DeleteUpload(r.Context(), rec.ID); err != nil {
		respondStoreError(w, r, err)
		return
	}
	// The row is gone; a failed file removal leaves an orphan, never a
	// dangling record.
	if err := s.uploads.Remove(rec.StoredName); err != nil {
		log.WithComponentFromContext(r.Context(), "api").Warn().Err(err).
			Str("stored_name", rec.StoredName).
			Msg("upload file removal failed")
	}

	log.WithComponentFromContext(r.Context(), "api").Info().
		Str("event", "upload.deleted").
		Str("upload_id", rec.ID).
		Msg("upload deleted")

	w.WriteHeader(http.StatusNoContent)
}
