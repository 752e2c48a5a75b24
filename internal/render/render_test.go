package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     map[string]any
		want     string
		wantOK   bool
	}{
		{
			name:     "Plain template without tags",
			template: "<svg>static</svg>",
			args:     map[string]any{},
			want:     "<svg>static</svg>",
			wantOK:   true,
		},
		{
			name:     "Simple interpolation",
			template: "<svg>{{x}}</svg>",
			args:     map[string]any{"x": "hi"},
			want:     "<svg>hi</svg>",
			wantOK:   true,
		},
		{
			name:     "Interpolation with surrounding spaces",
			template: "<svg>{{ x }}</svg>",
			args:     map[string]any{"x": "hi"},
			want:     "<svg>hi</svg>",
			wantOK:   true,
		},
		{
			name:     "Multiple tags",
			template: "<svg>{{a}}-{{b}}</svg>",
			args:     map[string]any{"a": "1", "b": "2"},
			want:     "<svg>1-2</svg>",
			wantOK:   true,
		},
		{
			name:     "Number formatting without float artifacts",
			template: "<svg>{{n}}</svg>",
			args:     map[string]any{"n": float64(42)},
			want:     "<svg>42</svg>",
			wantOK:   true,
		},
		{
			name:     "Boolean value",
			template: "<svg>{{flag}}</svg>",
			args:     map[string]any{"flag": true},
			want:     "<svg>true</svg>",
			wantOK:   true,
		},
		{
			name:     "Dotted path lookup",
			template: "<svg>{{user.name}}</svg>",
			args:     map[string]any{"user": map[string]any{"name": "alice"}},
			want:     "<svg>alice</svg>",
			wantOK:   true,
		},
		{
			name:     "Default filter applies when key missing",
			template: `<svg>{{ label | default(value="n/a") }}</svg>`,
			args:     map[string]any{},
			want:     "<svg>n/a</svg>",
			wantOK:   true,
		},
		{
			name:     "Default filter ignored when key present",
			template: `<svg>{{ label | default(value="n/a") }}</svg>`,
			args:     map[string]any{"label": "ok"},
			want:     "<svg>ok</svg>",
			wantOK:   true,
		},
		{
			name:     "Default filter with numeric literal",
			template: "<svg>{{ count | default(value=7) }}</svg>",
			args:     map[string]any{},
			want:     "<svg>7</svg>",
			wantOK:   true,
		},
		{
			name:     "Missing key without default falls back to raw template",
			template: "<svg>{{missing}}</svg>",
			args:     map[string]any{"x": "hi"},
			want:     "<svg>{{missing}}</svg>",
			wantOK:   false,
		},
		{
			name:     "Unterminated tag falls back to raw template",
			template: "<svg>{{x</svg>",
			args:     map[string]any{"x": "hi"},
			want:     "<svg>{{x</svg>",
			wantOK:   false,
		},
		{
			name:     "Unknown filter falls back to raw template",
			template: "<svg>{{ x | upper }}</svg>",
			args:     map[string]any{"x": "hi"},
			want:     "<svg>{{ x | upper }}</svg>",
			wantOK:   false,
		},
		{
			name:     "Malformed default argument falls back to raw template",
			template: "<svg>{{ x | default(oops=1) }}</svg>",
			args:     map[string]any{},
			want:     "<svg>{{ x | default(oops=1) }}</svg>",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Render(tt.template, tt.args)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

// Rendering a non-empty template always yields non-empty output: failure
// returns the template itself.
func TestRenderNeverEmpty(t *testing.T) {
	templates := []string{
		"<svg>{{a}}{{b}}{{c}}</svg>",
		"{{",
		"{{}}",
		"<svg/>",
	}
	for _, template := range templates {
		got, _ := Render(template, map[string]any{})
		assert.NotEmpty(t, got, "template %q", template)
	}
}
