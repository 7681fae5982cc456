package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/shaderbox/shaderbox/internal/config"
	"github.com/shaderbox/shaderbox/internal/frame"
	"github.com/shaderbox/shaderbox/internal/shader"
	"github.com/shaderbox/shaderbox/internal/watch"
)

// wheelStep converts GLFW scroll offsets (one unit per notch, positive
// upward) into browser-style wheel deltas (pixels, positive downward), so
// shaders see the same iScroll on both renderers.
const wheelStep = 100

var (
	errorColor      = color.RGBA{R: 255, G: 107, B: 107, A: 255}
	errorBackground = color.RGBA{A: 216}
	fpsColor        = color.RGBA{R: 238, G: 238, B: 238, A: 255}
)

// scaleCursor maps a cursor position in window coordinates to framebuffer
// pixels, which differ on HiDPI displays.
func scaleCursor(x, y float64, winW, winH, fbW, fbH int) (float64, float64) {
	if winW > 0 && winH > 0 {
		x *= float64(fbW) / float64(winW)
		y *= float64(fbH) / float64(winH)
	}
	return x, y
}

// viewer renders one shader file in a GLFW window and recompiles it when
// the file changes.
type viewer struct {
	cfg    config.Viewer
	logger *zap.Logger

	window *glfw.Window
	quad   *fullscreenQuad
	text   *textRenderer
	prog   *program

	input *frame.Input
	clock *frame.Clock
	fps   frame.FPSMeter

	// overlay holds the rasterized error for the current program, if any.
	overlay *image.RGBA
	redraw  chan struct{}

	fpsShown int
	fpsImage *image.RGBA
}

// runViewer opens the window and blocks until it is closed or ctx is done.
func runViewer(ctx context.Context, cfg config.Viewer, logger *zap.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("error initializing GLFW: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, cfg.Samples)

	title := "shaderbox - " + filepath.Base(cfg.Shader)
	var window *glfw.Window
	var err error
	if cfg.Fullscreen {
		monitor := glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()
		window, err = glfw.CreateWindow(mode.Width, mode.Height, title, monitor, nil)
	} else {
		window, err = glfw.CreateWindow(cfg.Width, cfg.Height, title, nil, nil)
	}
	if err != nil {
		return fmt.Errorf("error creating window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return fmt.Errorf("error initializing OpenGL: %w", err)
	}
	logger.Info("OpenGL ready", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))
	if cfg.Samples > 0 {
		gl.Enable(gl.MULTISAMPLE)
	}
	gl.Disable(gl.DEPTH_TEST)

	text, err := newTextRenderer()
	if err != nil {
		return fmt.Errorf("error building text overlay: %w", err)
	}
	defer text.delete()

	v := &viewer{
		cfg:    cfg,
		logger: logger,
		window: window,
		quad:   newFullscreenQuad(),
		text:   text,
		input:  frame.NewInput(),
		clock:  frame.NewClock(nil),
		redraw: make(chan struct{}, 1),
	}
	defer v.quad.delete()
	v.bindInput()

	stop, err := v.watch(ctx)
	if err != nil {
		// Rendering still works without hot reload.
		logger.Warn("Shader hot reload disabled", zap.Error(err))
	} else {
		defer stop()
	}

	v.load()
	for !window.ShouldClose() {
		select {
		case <-ctx.Done():
			window.SetShouldClose(true)
			continue
		case <-v.redraw:
			v.load()
		default:
		}
		v.drawFrame(time.Now())
		window.SwapBuffers()
		glfw.PollEvents()
	}
	if v.prog != nil {
		v.prog.delete()
	}
	return nil
}

func (v *viewer) bindInput() {
	v.window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		winW, winH := w.GetSize()
		fbW, fbH := w.GetFramebufferSize()
		x, y = scaleCursor(x, y, winW, winH, fbW, fbH)
		v.input.Move(x, y, float64(fbH))
	})
	v.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			switch button {
			case glfw.MouseButtonRight:
				v.input.Press(frame.ButtonRight)
			case glfw.MouseButtonMiddle:
				v.input.Press(frame.ButtonMiddle)
			default:
				v.input.Press(frame.ButtonLeft)
			}
		case glfw.Release:
			v.input.Release()
		}
	})
	v.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		v.input.Wheel(xoff*wheelStep, -yoff*wheelStep)
	})
	v.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
}

// watch starts a watcher on the shader's directory; a change to the shader
// file queues a redraw.
func (v *viewer) watch(ctx context.Context) (stop func(), err error) {
	dir := filepath.Dir(v.cfg.Shader)
	want := "./" + filepath.Base(v.cfg.Shader)

	b := watch.NewBroadcaster()
	b.Add(func(changed string) {
		if changed != want {
			return
		}
		select {
		case v.redraw <- struct{}{}:
		default:
		}
	})
	w, err := watch.New(dir, b, v.logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	go w.Run(ctx)
	return func() {
		cancel()
		w.Close()
	}, nil
}

// load reads and compiles the shader, replacing the current program. On
// failure nothing is drawn and the error is shown instead.
func (v *viewer) load() {
	if v.prog != nil {
		v.prog.delete()
		v.prog = nil
	}
	v.overlay = nil

	prog, err := v.compile()
	if err != nil {
		v.logger.Error("Shader failed", zap.String("shader", v.cfg.Shader), zap.Error(err))
		v.overlay = rasterizeText(wrapText(err.Error(), 120), errorColor, errorBackground)
		return
	}
	v.prog = prog
	v.clock.Reset()
	v.logger.Info("Shader loaded", zap.String("shader", v.cfg.Shader))
}

func (v *viewer) compile() (*program, error) {
	src, err := shader.Load(v.cfg.Shader)
	if err != nil {
		return nil, err
	}
	return buildProgram(shader.Assemble(src))
}

func (v *viewer) drawFrame(now time.Time) {
	fbWidth, fbHeight := v.window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	if v.prog != nil {
		v.prog.use(v.clock.Uniforms(fbWidth, fbHeight, v.input))
		v.quad.draw()
	}

	if v.overlay != nil {
		v.text.render(v.overlay, 0, 0, fbWidth, fbHeight)
	}

	v.fps.Tick(now)
	if fps, ok := v.fps.Display(); ok && v.cfg.ShowFPS && v.overlay == nil {
		if v.fpsImage == nil || fps != v.fpsShown {
			v.fpsImage = rasterizeText([]string{strconv.Itoa(fps)}, fpsColor, color.Transparent)
			v.fpsShown = fps
		}
		v.text.render(v.fpsImage, 4, 4, fbWidth, fbHeight)
	}
}
