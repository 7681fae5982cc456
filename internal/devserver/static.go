package devserver

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const indexFile = "index.html"

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".glsl": "text/glsl",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// ContentType returns the Content-Type served for name.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

var assetRef = regexp.MustCompile(`\.(js|css)"`)

// RewriteIndex injects the page flags into index.html. With a deploy ID the
// page gets DEPLOY and every script and stylesheet reference is versioned;
// without one it gets IS_DEV so the page opens the dev socket.
func RewriteIndex(html, deployID string) string {
	if deployID != "" {
		html = strings.Replace(html, "</head>", `  <script>DEPLOY="`+deployID+`"</script>`+"\n</head>", 1)
		return assetRef.ReplaceAllString(html, `.$1?v=`+deployID+`"`)
	}
	return strings.Replace(html, "</head>", "  <script>IS_DEV=true</script>\n</head>", 1)
}

// filePath maps a URL path to a name inside the served filesystem.
func filePath(urlPath string) (string, bool) {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = indexFile
	}
	return name, fs.ValidPath(name)
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	name, ok := filePath(r.URL.Path)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if info, err := fs.Stat(s.files, name); err == nil && info.IsDir() {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	data, err := fs.ReadFile(s.files, name)
	if err != nil {
		s.fileError(w, name, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", ContentType(name))
	if name == indexFile {
		h.Set("Cache-Control", "public, max-age=0, must-revalidate")
		data = []byte(RewriteIndex(string(data), s.opts.DeployID))
	} else if r.URL.Query().Has("v") {
		h.Set("Cache-Control", "public, max-age=31536000, immutable")
	}
	if r.Method == http.MethodHead {
		return
	}
	w.Write(data)
}

func (s *Server) fileError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	s.logger.Error("Failed to read file", zap.String("file", name), zap.Error(err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
