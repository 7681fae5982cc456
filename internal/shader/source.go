// Package shader assembles user fragment shaders into complete GLSL programs
// for the full-screen quad and turns compiler output into readable errors.
//
// A user shader is either a complete program with its own main() or a
// shader-toy style file that only defines
//
//	void mainImage(out vec4 fragColor, in vec2 fragCoord)
//
// In both cases the four standard uniforms are available:
// iResolution (vec3), iMouse (vec4), iScroll (vec3) and iTime (float).
package shader

import (
	"fmt"
	"regexp"
	"strings"
)

// Version is the GLSL version every assembled shader is compiled against.
const Version = "#version 330 core"

// VertexSource is the fixed vertex stage: it passes the quad corners
// straight through in clip space.
const VertexSource = Version + `
layout(location = 0) in vec2 pos;
void main() { gl_Position = vec4(pos.xy, 0.0, 1.0); }
` + "\x00"

// QuadVertices are the corners of the clip-space rectangle, in triangle
// strip order.
var QuadVertices = []float32{
	1, 1,
	-1, 1,
	1, -1,
	-1, -1,
}

// QuadVertexCount is the number of vertices in QuadVertices.
const QuadVertexCount = 4

const precisionHeader = `#ifdef GL_ES
precision highp float;
precision highp int;
#endif
`

// Uniform describes one of the built-in uniforms.
type Uniform struct {
	Name string
	Type string
}

// Uniforms lists the built-in uniforms in declaration order.
var Uniforms = []Uniform{
	{Name: "iResolution", Type: "vec3"},
	{Name: "iMouse", Type: "vec4"},
	{Name: "iScroll", Type: "vec3"},
	{Name: "iTime", Type: "float"},
}

var (
	versionLine   = regexp.MustCompile(`^#\s*version\b`)
	mainImageDecl = regexp.MustCompile(`\bvoid\s+mainImage\s*\(`)
	mainDecl      = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(void)?\s*\)`)
)

// Source is an assembled fragment shader.
type Source struct {
	// Text is the complete fragment shader without a NUL terminator.
	Text string

	// HeaderLines is the number of lines placed before the first line of
	// the user source.
	HeaderLines int

	// Wrapped reports whether a main() calling mainImage was appended.
	Wrapped bool
}

// GL returns the source NUL-terminated, as go-gl expects.
func (s Source) GL() string {
	return s.Text + "\x00"
}

// Assemble wraps user fragment source in the version/precision header and
// declares whichever built-in uniforms the source does not declare itself.
func Assemble(src string) Source {
	src = blankVersion(strings.ReplaceAll(src, "\r\n", "\n"))

	var b strings.Builder
	b.WriteString(Version)
	b.WriteString("\n")
	b.WriteString(precisionHeader)
	for _, u := range Uniforms {
		if declares(src, u.Name) {
			continue
		}
		fmt.Fprintf(&b, "uniform %s %s;\n", u.Type, u.Name)
	}

	wrapped := mainImageDecl.MatchString(src) && !mainDecl.MatchString(src)
	if wrapped && !declaresOutput(src) {
		b.WriteString("out vec4 fragColor;\n")
	}

	header := b.String()
	text := header + src
	if wrapped {
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		text += "void main() { mainImage(fragColor, gl_FragCoord.xy); }\n"
	}

	return Source{
		Text:        text,
		HeaderLines: strings.Count(header, "\n"),
		Wrapped:     wrapped,
	}
}

// blankVersion empties the line holding a #version directive that comes
// before any code, keeping the line so user line numbers do not shift. Only
// blank lines and comments may precede it.
func blankVersion(src string) string {
	inComment := false
	for start := 0; start < len(src); {
		end := strings.IndexByte(src[start:], '\n')
		if end < 0 {
			end = len(src)
		} else {
			end += start
		}
		line := strings.TrimSpace(src[start:end])
		if inComment {
			i := strings.Index(line, "*/")
			if i >= 0 {
				inComment = false
				line = strings.TrimSpace(line[i+2:])
			} else {
				line = ""
			}
		}
		for strings.HasPrefix(line, "/*") {
			i := strings.Index(line[2:], "*/")
			if i < 0 {
				inComment = true
				line = ""
				break
			}
			line = strings.TrimSpace(line[i+4:])
		}
		switch {
		case line == "" || strings.HasPrefix(line, "//"):
		case versionLine.MatchString(line):
			return src[:start] + src[end:]
		default:
			return src
		}
		start = end + 1
	}
	return src
}

// declares reports whether src has a uniform declaration for name.
func declares(src, name string) bool {
	re := regexp.MustCompile(`\buniform\s+(highp\s+|mediump\s+|lowp\s+)?\w+\s+` + regexp.QuoteMeta(name) + `\b`)
	return re.MatchString(src)
}

var outputDecl = regexp.MustCompile(`\bout\s+vec4\s+fragColor\s*;`)

func declaresOutput(src string) bool {
	return outputDecl.MatchString(src)
}
