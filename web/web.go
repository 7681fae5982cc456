// Package web embeds the starter project written by `shaderbox init`: a
// page, a small WebGL2 client and an example shader.
package web

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

//go:embed template
var files embed.FS

// Template is the starter project tree.
var Template fs.FS

// ShaderPath is the example shader's path inside Template.
const ShaderPath = "src/world.glsl"

func init() {
	sub, err := fs.Sub(files, "template")
	if err != nil {
		panic(err)
	}
	Template = sub
}

// Scaffold writes Template into dir, creating it if needed. Existing files
// are left alone and reported in skipped.
func Scaffold(dir string) (written, skipped []string, err error) {
	err = fs.WalkDir(Template, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, filepath.FromSlash(name))
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		if _, err := os.Stat(dst); err == nil {
			skipped = append(skipped, name)
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		data, err := fs.ReadFile(Template, name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
		written = append(written, path.Clean(name))
		return nil
	})
	if err != nil {
		return written, skipped, fmt.Errorf("failed to scaffold %s: %w", dir, err)
	}
	return written, skipped, nil
}
