package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
)

// serveUploadFile streams a stored upload from disk. The stored name was
// validated against the generated-name pattern, so the remaining checks
// guard against on-disk tampering: a symlink swapped in for the blob, or a
// directory where a file should be.
func (s *Server) serveUploadFile(w http.ResponseWriter, r *http.Request, rec *domain.Upload) {
	path, err := s.uploads.Path(rec.StoredName)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrPathTraversal)
		return
	}

	base, err := filepath.EvalSymlinks(s.uploads.Dir())
	if err != nil {
		log.FromContext(r.Context()).Error().Err(err).Msg("upload dir unavailable")
		RespondError(w, r, http.StatusInternalServerError, ErrInternal)
		return
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Metadata row survived a lost file.
			log.FromContext(r.Context()).Warn().
				Str("stored_name", rec.StoredName).
				Msg("upload file missing on disk")
			RespondError(w, r, http.StatusNotFound, ErrNotFound)
			return
		}
		RespondError(w, r, http.StatusInternalServerError, ErrInternal)
		return
	}
	rel, err := filepath.Rel(base, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		RespondError(w, r, http.StatusBadRequest, ErrPathTraversal)
		return
	}

	f, err := os.Open(resolved) // #nosec G304 -- resolved path is contained in the upload dir
	if err != nil {
		if os.IsNotExist(err) {
			RespondError(w, r, http.StatusNotFound, ErrNotFound)
			return
		}
		RespondError(w, r, http.StatusInternalServerError, ErrInternal)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		RespondError(w, r, http.StatusInternalServerError, ErrInternal)
		return
	}
	if fi.IsDir() {
		RespondError(w, r, http.StatusNotFound, ErrNotFound)
		return
	}

	etag := fmt.Sprintf(`W/"%x-%x"`, fi.ModTime().UnixNano(), fi.Size())
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", rec.Name))
	http.ServeContent(w, r, rec.Name, fi.ModTime(), f)
}
