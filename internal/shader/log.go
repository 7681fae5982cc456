package shader

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ErrEmptySource is returned by Load for a shader file with no content.
var ErrEmptySource = errors.New("shader source is empty")

// Load reads the shader file at path.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not load the shader source: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptySource)
	}
	return string(data), nil
}

// Diagnostic is one message from a shader compiler info log.
type Diagnostic struct {
	// Line is the 1-based line in the user's source, or 0 when the message
	// has no position or points into generated code.
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return d.Message
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Compiler drivers disagree on where the line number goes.
var logFormats = []*regexp.Regexp{
	// ANGLE, Apple: "ERROR: 0:12: 'x' : undeclared identifier"
	regexp.MustCompile(`^(?:ERROR|WARNING):\s*\d+:(\d+):\s*(.*)$`),
	// Mesa: "0:12(5): error: ..."
	regexp.MustCompile(`^\d+:(\d+)\(\d+\):\s*(.*)$`),
	// NVIDIA: "0(12) : error C0000: ..."
	regexp.MustCompile(`^\d+\((\d+)\)\s*:\s*(.*)$`),
}

// ParseLog splits a compiler info log into diagnostics, shifting line
// numbers back by headerLines so they point into the user's file.
func ParseLog(log string, headerLines int) []Diagnostic {
	var out []Diagnostic
	for _, line := range strings.Split(log, "\n") {
		line = strings.TrimRight(strings.TrimSpace(line), "\x00")
		if line == "" {
			continue
		}
		out = append(out, parseLine(line, headerLines))
	}
	return out
}

func parseLine(line string, headerLines int) Diagnostic {
	for _, re := range logFormats {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			break
		}
		n -= headerLines
		if n < 1 {
			n = 0
		}
		return Diagnostic{Line: n, Message: strings.TrimSpace(m[2])}
	}
	return Diagnostic{Message: line}
}

// Stage names a shader pipeline stage.
type Stage string

const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
)

// CompileError is returned when a shader stage fails to compile.
type CompileError struct {
	Stage       Stage
	Log         string
	Diagnostics []Diagnostic
}

func (e *CompileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "An error occurred compiling the %s shader:", e.Stage)
	if len(e.Diagnostics) == 0 {
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(e.Log))
		return b.String()
	}
	for _, d := range e.Diagnostics {
		b.WriteString("\n")
		b.WriteString(d.String())
	}
	return b.String()
}

// LinkError is returned when the program fails to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "Unable to initialize the shader program: " + strings.TrimSpace(e.Log)
}
