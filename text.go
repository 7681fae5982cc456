package main

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	glyphWidth  = 7
	lineHeight  = 15
	textPadding = 6
)

const textVertexShaderSource = `
#version 330 core
layout(location = 0) in vec2 aPos;
layout(location = 1) in vec2 aTexCoord;
out vec2 TexCoord;
uniform mat4 projection;

void main() {
    gl_Position = projection * vec4(aPos, 0.0, 1.0);
    TexCoord = aTexCoord;
}` + "\x00"

const textFragmentShaderSource = `
#version 330 core
in vec2 TexCoord;
out vec4 FragColor;
uniform sampler2D textTexture;

void main() {
    FragColor = texture(textTexture, TexCoord);
}` + "\x00"

// wrapText splits text into lines no wider than cols characters.
func wrapText(text string, cols int) []string {
	if cols < 1 {
		cols = 1
	}
	var out []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		for len(line) > cols {
			out = append(out, line[:cols])
			line = line[cols:]
		}
		out = append(out, line)
	}
	return out
}

// rasterizeText draws lines in fg on a translucent box sized to fit them.
func rasterizeText(lines []string, fg, bg color.Color) *image.RGBA {
	cols := 1
	for _, l := range lines {
		if len(l) > cols {
			cols = len(l)
		}
	}
	w := cols*glyphWidth + 2*textPadding
	h := len(lines)*lineHeight + 2*textPadding
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
	}
	for i, l := range lines {
		d.Dot = fixed.P(textPadding, textPadding+i*lineHeight+basicfont.Face7x13.Ascent)
		d.DrawString(l)
	}
	return img
}

// textRenderer draws text overlays as textured quads in pixel coordinates
// with the origin at the top-left corner.
type textRenderer struct {
	program    uint32
	vao        uint32
	vbo        uint32
	texture    uint32
	projection int32
}

func newTextRenderer() (*textRenderer, error) {
	id, err := newProgram(textVertexShaderSource, textFragmentShaderSource, 0)
	if err != nil {
		return nil, err
	}
	tr := &textRenderer{
		program:    id,
		projection: gl.GetUniformLocation(id, gl.Str("projection\x00")),
	}

	gl.GenVertexArrays(1, &tr.vao)
	gl.GenBuffers(1, &tr.vbo)
	gl.BindVertexArray(tr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, tr.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenTextures(1, &tr.texture)
	gl.BindTexture(gl.TEXTURE_2D, tr.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return tr, nil
}

// render draws img at (x, y) on a viewport of width by height pixels.
func (tr *textRenderer) render(img *image.RGBA, x, y float32, width, height int) {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	b := img.Bounds()
	gl.BindTexture(gl.TEXTURE_2D, tr.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

	w, h := float32(b.Dx()), float32(b.Dy())

	// Orthographic projection with Y pointing down.
	projection := []float32{
		2.0 / float32(width), 0, 0, 0,
		0, -2.0 / float32(height), 0, 0,
		0, 0, -1, 0,
		-1, 1, 0, 1,
	}

	gl.UseProgram(tr.program)
	gl.UniformMatrix4fv(tr.projection, 1, false, &projection[0])

	vertices := []float32{
		x, y + h, 0.0, 1.0,
		x, y, 0.0, 0.0,
		x + w, y, 1.0, 0.0,
		x, y + h, 0.0, 1.0,
		x + w, y, 1.0, 0.0,
		x + w, y + h, 1.0, 1.0,
	}
	gl.BindVertexArray(tr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, tr.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))

	gl.ActiveTexture(gl.TEXTURE0)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.Disable(gl.BLEND)
}

func (tr *textRenderer) delete() {
	gl.DeleteTextures(1, &tr.texture)
	gl.DeleteBuffers(1, &tr.vbo)
	gl.DeleteVertexArrays(1, &tr.vao)
	gl.DeleteProgram(tr.program)
}
