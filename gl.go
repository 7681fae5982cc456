package main

import (
	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/shaderbox/shaderbox/internal/frame"
	"github.com/shaderbox/shaderbox/internal/shader"
)

// fullscreenQuad is the clip-space rectangle every frame is drawn on.
type fullscreenQuad struct {
	vao uint32
	vbo uint32
}

func newFullscreenQuad() *fullscreenQuad {
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(shader.QuadVertices)*4, gl.Ptr(shader.QuadVertices), gl.STATIC_DRAW)

	// pos (location 0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return &fullscreenQuad{vao: vao, vbo: vbo}
}

func (q *fullscreenQuad) draw() {
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, shader.QuadVertexCount)
	gl.BindVertexArray(0)
}

func (q *fullscreenQuad) delete() {
	gl.DeleteBuffers(1, &q.vbo)
	gl.DeleteVertexArrays(1, &q.vao)
}

// program is a linked shader program with its uniform locations. A
// location of -1 means the shader does not use that uniform.
type program struct {
	id         uint32
	resolution int32
	mouse      int32
	scroll     int32
	time       int32
}

func (p *program) use(u frame.Uniforms) {
	gl.UseProgram(p.id)
	if p.resolution >= 0 {
		gl.Uniform3f(p.resolution, u.Resolution[0], u.Resolution[1], u.Resolution[2])
	}
	if p.mouse >= 0 {
		gl.Uniform4fv(p.mouse, 1, &u.Mouse[0])
	}
	if p.scroll >= 0 {
		gl.Uniform3f(p.scroll, u.Scroll[0], u.Scroll[1], u.Scroll[2])
	}
	if p.time >= 0 {
		gl.Uniform1f(p.time, u.Time)
	}
}

func (p *program) delete() {
	gl.DeleteProgram(p.id)
}

// buildProgram compiles src against the quad vertex shader and links it.
func buildProgram(src shader.Source) (*program, error) {
	id, err := newProgram(shader.VertexSource, src.GL(), src.HeaderLines)
	if err != nil {
		return nil, err
	}
	return &program{
		id:         id,
		resolution: gl.GetUniformLocation(id, gl.Str("iResolution\x00")),
		mouse:      gl.GetUniformLocation(id, gl.Str("iMouse\x00")),
		scroll:     gl.GetUniformLocation(id, gl.Str("iScroll\x00")),
		time:       gl.GetUniformLocation(id, gl.Str("iTime\x00")),
	}, nil
}

func compileShader(source string, shaderType uint32, headerLines int) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(sh, 1, csources, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)
		log := infoLog(logLength, func(buf *uint8) { gl.GetShaderInfoLog(sh, logLength, nil, buf) })
		gl.DeleteShader(sh)

		stage := shader.StageVertex
		if shaderType == gl.FRAGMENT_SHADER {
			stage = shader.StageFragment
		} else {
			headerLines = 0
		}
		return 0, &shader.CompileError{
			Stage:       stage,
			Log:         log,
			Diagnostics: shader.ParseLog(log, headerLines),
		}
	}
	return sh, nil
}

func newProgram(vertexSrc, fragmentSrc string, headerLines int) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, 0)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertexShader)
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, headerLines)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragmentShader)

	id := gl.CreateProgram()
	gl.AttachShader(id, vertexShader)
	gl.AttachShader(id, fragmentShader)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := infoLog(logLength, func(buf *uint8) { gl.GetProgramInfoLog(id, logLength, nil, buf) })
		gl.DeleteProgram(id)
		return 0, &shader.LinkError{Log: log}
	}
	return id, nil
}

// infoLog reads a driver log of n bytes; some drivers report zero length
// on failure.
func infoLog(n int32, read func(*uint8)) string {
	if n <= 0 {
		return "(no log)"
	}
	buf := make([]byte, n)
	read(&buf[0])
	return string(buf)
}
