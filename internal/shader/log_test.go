package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLog(t *testing.T) {
	tests := []struct {
		name   string
		log    string
		header int
		want   []Diagnostic
	}{
		{
			name:   "angle",
			log:    "ERROR: 0:12: 'uvv' : undeclared identifier\nERROR: 0:12: '' : compilation terminated\n",
			header: 10,
			want: []Diagnostic{
				{Line: 2, Message: "'uvv' : undeclared identifier"},
				{Line: 2, Message: "'' : compilation terminated"},
			},
		},
		{
			name:   "mesa",
			log:    "0:15(7): error: `foo' undeclared\x00",
			header: 10,
			want:   []Diagnostic{{Line: 5, Message: "error: `foo' undeclared"}},
		},
		{
			name:   "nvidia",
			log:    "0(11) : error C0000: syntax error, unexpected '}'",
			header: 10,
			want:   []Diagnostic{{Line: 1, Message: "error C0000: syntax error, unexpected '}'"}},
		},
		{
			name:   "header line",
			log:    "0:3(1): error: redeclaration of iTime",
			header: 10,
			want:   []Diagnostic{{Line: 0, Message: "error: redeclaration of iTime"}},
		},
		{
			name:   "unpositioned",
			log:    "Link failed because of missing main\n\n",
			header: 10,
			want:   []Diagnostic{{Message: "Link failed because of missing main"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLog(tt.log, tt.header))
		})
	}
}

func TestCompileErrorMessage(t *testing.T) {
	err := &CompileError{
		Stage:       StageFragment,
		Log:         "0:12(1): error: bad",
		Diagnostics: ParseLog("0:12(1): error: bad", 10),
	}
	assert.Equal(t, "An error occurred compiling the fragment shader:\nline 2: error: bad", err.Error())

	bare := &CompileError{Stage: StageVertex, Log: "  broken  "}
	assert.Equal(t, "An error occurred compiling the vertex shader: broken", bare.Error())
}

func TestLinkErrorMessage(t *testing.T) {
	err := &LinkError{Log: "error: no main\n"}
	assert.Equal(t, "Unable to initialize the shader program: error: no main", err.Error())
}
