package devserver

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DirEntry is one element of a /fs/ directory listing.
type DirEntry struct {
	Name        string `json:"name"`
	IsFile      bool   `json:"isFile"`
	IsDirectory bool   `json:"isDirectory"`
	IsSymlink   bool   `json:"isSymlink"`
}

// FileInfo is the /fs/ response for anything that is not a directory.
type FileInfo struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	Mode        string    `json:"mode"`
	Mtime       time.Time `json:"mtime"`
	IsFile      bool      `json:"isFile"`
	IsDirectory bool      `json:"isDirectory"`
	IsSymlink   bool      `json:"isSymlink"`
}

// serveFS answers /fs/<path> with a directory listing or a file stat, so
// editor tooling can browse the served tree.
func (s *Server) serveFS(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(r.URL.Path, "/fs")), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	info, err := lstat(s.files, name)
	if err != nil {
		s.fileError(w, name, err)
		return
	}

	var body any
	if info.IsDir() {
		entries, err := fs.ReadDir(s.files, name)
		if err != nil {
			s.fileError(w, name, err)
			return
		}
		list := make([]DirEntry, 0, len(entries))
		for _, e := range entries {
			t := e.Type()
			list = append(list, DirEntry{
				Name:        e.Name(),
				IsFile:      t.IsRegular(),
				IsDirectory: t.IsDir(),
				IsSymlink:   t&fs.ModeSymlink != 0,
			})
		}
		body = list
	} else {
		body = FileInfo{
			Name:        info.Name(),
			Size:        info.Size(),
			Mode:        info.Mode().String(),
			Mtime:       info.ModTime().UTC(),
			IsFile:      info.Mode().IsRegular(),
			IsDirectory: false,
			IsSymlink:   info.Mode()&fs.ModeSymlink != 0,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("Failed to write fs response", zap.Error(err))
	}
}

// lstat reports on a symlink itself rather than its target when fsys can
// tell them apart, so a link to a directory is not listed.
func lstat(fsys fs.FS, name string) (fs.FileInfo, error) {
	if l, ok := fsys.(fs.ReadLinkFS); ok {
		return l.Lstat(name)
	}
	return fs.Stat(fsys, name)
}
