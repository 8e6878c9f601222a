package model

import (
	"strconv"
	"strings"
)

// Color is an RGB color.
type Color struct {
	R, G, B uint8
}

var (
	ColorOrange = Color{R: 255, G: 165, B: 0}
	ColorRed    = Color{R: 255, G: 0, B: 0}
	ColorYellow = Color{R: 255, G: 255, B: 0}
)

// String encodes the color as "r;g;b".
func (c Color) String() string {
	return strconv.Itoa(int(c.R)) + ";" + strconv.Itoa(int(c.G)) + ";" + strconv.Itoa(int(c.B))
}

// ParseColor decodes "r;g;b". Components are clamped to 0..255.
func ParseColor(s string) (Color, bool) {
	parts := strings.Split(s, ";")
	if len(parts) != 3 {
		return Color{}, false
	}
	var rgb [3]uint8
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Color{}, false
		}
		rgb[i] = uint8(min(max(v, 0), 255))
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, true
}

// Firework describes a burst effect played along a teleport trail.
type Firework struct {
	Colors     []Color
	FadeColors []Color
	Flicker    bool
	Trail      bool
}
