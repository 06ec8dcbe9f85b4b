package api

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/causewayhq/causeway/web"
)

// spaHandler serves the embedded admin UI. Unknown paths without a file
// extension fall back to the shell so client-side routes deep-link. The
// shell is never cached; hashed assets are cached hard.
func (s *Server) spaHandler() http.Handler {
	sub, err := web.Dist()
	if err != nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "ui not available", http.StatusInternalServerError)
		})
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/")
		if path != "" {
			if _, err := fs.Stat(sub, path); err != nil {
				r.URL.Path = "/"
			}
		}

		if r.URL.Path == "/" || !strings.Contains(r.URL.Path, ".") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		fileServer.ServeHTTP(w, r)
	})
}
