package model

import (
	"fmt"
	"math"
	"strings"
)

// Face is one of the six block faces.
type Face uint8

const (
	FaceNorth Face = iota
	FaceEast
	FaceSouth
	FaceWest
	FaceUp
	FaceDown
)

var faceNames = [...]string{"NORTH", "EAST", "SOUTH", "WEST", "UP", "DOWN"}

// String returns the face name.
func (f Face) String() string {
	if int(f) < len(faceNames) {
		return faceNames[f]
	}
	return fmt.Sprintf("Face(%d)", uint8(f))
}

// ParseFace parses a face name (case-insensitive).
func ParseFace(s string) (Face, error) {
	for i, name := range faceNames {
		if strings.EqualFold(s, name) {
			return Face(i), nil
		}
	}
	return 0, fmt.Errorf("unknown face %q", s)
}

// Horizontal reports whether f is one of the four compass directions.
func (f Face) Horizontal() bool {
	return f <= FaceWest
}

// Opposite returns the face pointing the other way.
func (f Face) Opposite() Face {
	switch f {
	case FaceNorth:
		return FaceSouth
	case FaceSouth:
		return FaceNorth
	case FaceEast:
		return FaceWest
	case FaceWest:
		return FaceEast
	case FaceUp:
		return FaceDown
	default:
		return FaceUp
	}
}

// Delta returns the unit offset of the face. North is -Z, East is +X.
func (f Face) Delta() (dx, dy, dz int) {
	switch f {
	case FaceNorth:
		return 0, 0, -1
	case FaceEast:
		return 1, 0, 0
	case FaceSouth:
		return 0, 0, 1
	case FaceWest:
		return -1, 0, 0
	case FaceUp:
		return 0, 1, 0
	case FaceDown:
		return 0, -1, 0
	}
	return 0, 0, 0
}

// Yaw returns the yaw (degrees) of a viewer looking towards f.
// Vertical faces map to 0.
func (f Face) Yaw() float32 {
	switch f {
	case FaceWest:
		return -270
	case FaceNorth:
		return -180
	case FaceEast:
		return -90
	default:
		return 0
	}
}

// InvertYaw turns a yaw around by 180 degrees, keeping the sign of the remainder.
func InvertYaw(yaw float32) float32 {
	return float32(math.Mod(float64(yaw)-180, 360))
}
