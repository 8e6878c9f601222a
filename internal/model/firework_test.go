package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"255;165;0", ColorOrange, true},
		{" 1; 2 ;3", Color{1, 2, 3}, true},
		{"300;-5;128", Color{255, 0, 128}, true},
		{"1;2", Color{}, false},
		{"a;b;c", Color{}, false},
		{"", Color{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestColor_String(t *testing.T) {
	assert.Equal(t, "255;165;0", ColorOrange.String())
	c, ok := ParseColor(ColorYellow.String())
	assert.True(t, ok)
	assert.Equal(t, ColorYellow, c)
}
