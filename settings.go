package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/shaderbox/shaderbox/internal/config"
)

const (
	settingsWindowTitle = "shaderbox settings"
	settingsWidth       = 480
	settingsHeight      = 420
)

var settingsBackground = color.NRGBA{R: 0x20, G: 0x22, B: 0x28, A: 0xff}

// settingsValues mirrors the editable fields of the settings form. Numbers
// stay strings until apply so a half-typed value is not an error yet.
type settingsValues struct {
	Addr       string
	Root       string
	DeployID   string
	DebounceMS string
	Shader     string
	Width      string
	Height     string
	Fullscreen bool
	ShowFPS    bool
}

func valuesFromConfig(cfg config.Config) settingsValues {
	return settingsValues{
		Addr:       cfg.Server.Addr,
		Root:       cfg.Server.Root,
		DeployID:   cfg.Server.DeployID,
		DebounceMS: strconv.Itoa(cfg.Server.DebounceMS),
		Shader:     cfg.Viewer.Shader,
		Width:      strconv.Itoa(cfg.Viewer.Width),
		Height:     strconv.Itoa(cfg.Viewer.Height),
		Fullscreen: cfg.Viewer.Fullscreen,
		ShowFPS:    cfg.Viewer.ShowFPS,
	}
}

// apply copies the form values over cfg and validates the result.
func (v settingsValues) apply(cfg config.Config) (config.Config, error) {
	atoi := func(field, s string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number", field)
		}
		return n, nil
	}
	var err error
	if cfg.Server.DebounceMS, err = atoi("debounce", v.DebounceMS); err != nil {
		return cfg, err
	}
	if cfg.Viewer.Width, err = atoi("width", v.Width); err != nil {
		return cfg, err
	}
	if cfg.Viewer.Height, err = atoi("height", v.Height); err != nil {
		return cfg, err
	}
	cfg.Server.Addr = strings.TrimSpace(v.Addr)
	cfg.Server.Root = strings.TrimSpace(v.Root)
	cfg.Server.DeployID = strings.TrimSpace(v.DeployID)
	cfg.Viewer.Shader = strings.TrimSpace(v.Shader)
	cfg.Viewer.Fullscreen = v.Fullscreen
	cfg.Viewer.ShowFPS = v.ShowFPS
	return cfg, cfg.Validate()
}

// runSettings shows the settings window and writes path on Save.
func runSettings(path string, cfg config.Config, logger *zap.Logger) {
	a := app.New()
	w := a.NewWindow(settingsWindowTitle)
	w.Resize(fyne.NewSize(settingsWidth, settingsHeight))
	w.SetFixedSize(true)
	w.CenterOnScreen()

	vals := valuesFromConfig(cfg)

	entry := func(s *string) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(*s)
		e.OnChanged = func(t string) { *s = t }
		return e
	}
	check := func(label string, b *bool) *widget.Check {
		c := widget.NewCheck(label, func(on bool) { *b = on })
		c.SetChecked(*b)
		return c
	}

	title := canvas.NewText("shaderbox", color.White)
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 18
	title.Alignment = fyne.TextAlignCenter

	status := widget.NewLabel("Editing " + path)
	status.Wrapping = fyne.TextWrapWord

	form := widget.NewForm(
		widget.NewFormItem("Address", entry(&vals.Addr)),
		widget.NewFormItem("Root", entry(&vals.Root)),
		widget.NewFormItem("Deploy ID", entry(&vals.DeployID)),
		widget.NewFormItem("Debounce (ms)", entry(&vals.DebounceMS)),
		widget.NewFormItem("Shader", entry(&vals.Shader)),
		widget.NewFormItem("Width", entry(&vals.Width)),
		widget.NewFormItem("Height", entry(&vals.Height)),
		widget.NewFormItem("", check("Fullscreen", &vals.Fullscreen)),
		widget.NewFormItem("", check("Show FPS", &vals.ShowFPS)),
	)

	save := widget.NewButton("Save", func() {
		next, err := vals.apply(cfg)
		if err != nil {
			status.SetText(err.Error())
			return
		}
		if err := config.Save(path, next); err != nil {
			logger.Error("Failed to save settings", zap.String("path", path), zap.Error(err))
			status.SetText(err.Error())
			return
		}
		cfg = next
		logger.Info("Settings saved", zap.String("path", path))
		status.SetText("Saved " + path)
	})
	save.Importance = widget.HighImportance

	content := container.NewBorder(
		container.NewPadded(title),
		container.NewVBox(status, container.NewCenter(save)),
		nil, nil,
		container.NewPadded(form),
	)
	background := canvas.NewRectangle(settingsBackground)
	w.SetContent(container.NewStack(background, content))
	w.ShowAndRun()
}
