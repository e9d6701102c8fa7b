// Package static отдаёт собранный фронтенд: существующие файлы как есть,
// остальные пути — через index.html для клиентского роутинга.
package static

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Handler отдаёт статику из каталога dir.
type Handler struct {
	dir string
}

// New создает новый Handler.
func New(dir string) *Handler {
	return &Handler{dir: dir}
}

// ServeHTTP отдаёт файл, если он существует в каталоге статики,
// иначе index.html. Выход за пределы каталога запрещён.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.dir == "" {
		http.NotFound(w, r)
		return
	}

	requested := filepath.Join(h.dir, filepath.Clean("/"+r.URL.Path))
	if !strings.HasPrefix(requested, filepath.Clean(h.dir)) {
		http.NotFound(w, r)
		return
	}

	if info, err := os.Stat(requested); err == nil && !info.IsDir() {
		http.ServeFile(w, r, requested)
		return
	}

	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}
