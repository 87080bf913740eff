package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// NewStaticHandler serves the UI from dir. Extensionless page paths such as
// /dashboard resolve to dashboard.html and / resolves to index.html.
func NewStaticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		if name == "/" {
			name = "/index.html"
		}
		if path.Ext(name) == "" {
			page := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(name, "/")+".html"))
			if info, err := os.Stat(page); err == nil && !info.IsDir() {
				http.ServeFile(w, r, page)
				return
			}
		}
		if name == "/index.html" {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}
