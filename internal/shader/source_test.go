package shader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toySource = `void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    vec2 uv = fragCoord / iResolution.xy;
    fragColor = vec4(uv, 0.5 + 0.5 * sin(iTime), 1.0);
}
`

func TestAssembleMainImage(t *testing.T) {
	s := Assemble(toySource)

	assert.True(t, strings.HasPrefix(s.Text, Version+"\n"))
	assert.True(t, s.Wrapped)
	for _, u := range Uniforms {
		assert.Contains(t, s.Text, "uniform "+u.Type+" "+u.Name+";")
	}
	assert.Contains(t, s.Text, "out vec4 fragColor;")
	assert.True(t, strings.HasSuffix(s.Text, "void main() { mainImage(fragColor, gl_FragCoord.xy); }\n"))

	lines := strings.Split(s.Text, "\n")
	assert.Equal(t, "void mainImage(out vec4 fragColor, in vec2 fragCoord) {", lines[s.HeaderLines])
}

func TestAssembleKeepsUserDeclarations(t *testing.T) {
	src := `#version 300 es
precision highp float;
uniform vec3 iResolution;
uniform highp float iTime;
out vec4 outColor;
void main() {
    outColor = vec4(gl_FragCoord.xy / iResolution.xy, sin(iTime), 1.0);
}
`
	s := Assemble(src)

	assert.False(t, s.Wrapped)
	assert.NotContains(t, s.Text, "#version 300 es")
	assert.Equal(t, 1, strings.Count(s.Text, "iResolution;"))
	assert.Equal(t, 1, strings.Count(s.Text, "float iTime;"))
	assert.Contains(t, s.Text, "uniform vec4 iMouse;")
	assert.Contains(t, s.Text, "uniform vec3 iScroll;")
	assert.NotContains(t, s.Text, "mainImage(fragColor")

	// The directive's line is left empty so "precision highp float;" is
	// still line 2 of the file.
	lines := strings.Split(s.Text, "\n")
	assert.Equal(t, "", lines[s.HeaderLines])
	assert.Equal(t, "precision highp float;", lines[s.HeaderLines+1])
}

func TestAssembleVersionAfterComments(t *testing.T) {
	src := "// Aurora\r\n/* by someone\n   2024 */\n\n  #version 300 es\n" + toySource
	s := Assemble(src)

	assert.Equal(t, 1, strings.Count(s.Text, "#version"))
	assert.True(t, strings.HasPrefix(s.Text, Version+"\n"))

	lines := strings.Split(s.Text, "\n")
	assert.Equal(t, "// Aurora", lines[s.HeaderLines])
	assert.Equal(t, "", lines[s.HeaderLines+4])
	assert.Equal(t, "void mainImage(out vec4 fragColor, in vec2 fragCoord) {", lines[s.HeaderLines+5])
}

func TestBlankVersion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"first line", "#version 330 core\nvoid main() {}", "\nvoid main() {}"},
		{"spaced directive", "# version 300 es\nx", "\nx"},
		{"inline comment", "/* a */ #version 300 es\nx", "\nx"},
		{"after code", "float a;\n#version 300 es\n", "float a;\n#version 300 es\n"},
		{"inside comment", "/*\n#version 300 es\n*/\nx", "/*\n#version 300 es\n*/\nx"},
		{"none", "void main() {}", "void main() {}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, blankVersion(tt.in), tt.name)
	}
}

func TestAssembleOutputAlreadyDeclared(t *testing.T) {
	src := "out vec4 fragColor;\n" + toySource
	s := Assemble(src)
	assert.Equal(t, 1, strings.Count(s.Text, "out vec4 fragColor;"))
}

func TestSourceGL(t *testing.T) {
	s := Assemble(toySource)
	gl := s.GL()
	assert.True(t, strings.HasSuffix(gl, "\x00"))
	assert.Equal(t, s.Text, strings.TrimSuffix(gl, "\x00"))
	assert.True(t, strings.HasSuffix(VertexSource, "\x00"))
}

func TestQuad(t *testing.T) {
	assert.Len(t, QuadVertices, QuadVertexCount*2)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "world.glsl")
	require.NoError(t, os.WriteFile(path, []byte(toySource), 0o644))
	src, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, toySource, src)

	empty := filepath.Join(dir, "empty.glsl")
	require.NoError(t, os.WriteFile(empty, []byte(" \n"), 0o644))
	_, err = Load(empty)
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = Load(filepath.Join(dir, "missing.glsl"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
