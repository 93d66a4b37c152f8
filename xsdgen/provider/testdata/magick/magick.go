// Package magick is a small image API described by the source provider tests.
package magick

import "io"

type Quantum uint16

const MaxQuantum Quantum = 65535

type Percentage float64

type MagickColor struct {
	R, G, B, A Quantum
}

type MagickGeometry struct {
	Width, Height int
}

type Gravity int

const (
	GravityUndefined Gravity = iota
	GravityForget
	GravityCenter
	GravityNorth
)

type Channels int

const (
	Red Channels = 1 << iota
	Green
	Blue
)

// MagickImage is the scriptable image.
type MagickImage struct {
	BackgroundColor MagickColor
	Quality         int
	Page            *MagickGeometry
	Fuzz            Percentage
	Gravity         Gravity
	Label           string

	pixels []byte
}

func (i *MagickImage) Resize(width, height int) {}

// ResizeGeometry resizes to a geometry.
//magick:name Resize
func (i *MagickImage) ResizeGeometry(geometry MagickGeometry) {}

func (i *MagickImage) Blur(radius, sigma float64) {}

//magick:name Blur
func (i *MagickImage) BlurRadius(radius float64) {}

func (i *MagickImage) Draw(drawables ...Drawable) {}

func (i *MagickImage) AddProfile(profile *ImageProfile) {}

func (i *MagickImage) Flip() {}

func (i *MagickImage) Extent(width, height int, gravity Gravity, background MagickColor) {}

// Write is not scriptable.
//magick:skip
func (i *MagickImage) Write(w io.Writer) error { return nil }

func (i *MagickImage) Ping(r io.Reader) {}

func (i *MagickImage) reset() {}

type ImageProfile struct {
	Name string
	Data []byte
}

type Coordinate struct {
	X, Y float64
}

func NewCoordinate(x, y float64) Coordinate { return Coordinate{x, y} }

// Origin returns the zero coordinate.
//magick:ctor Coordinate
func Origin() Coordinate { return Coordinate{} }

// Drawable is an operation drawn on an image.
//magick:prefix Drawable
type Drawable interface {
	isDrawable()
}

type DrawableCircle struct {
	origin, perimeter Coordinate
}

func (DrawableCircle) isDrawable() {}

func NewDrawableCircle(originX, originY, perimeterX, perimeterY float64) Drawable {
	return DrawableCircle{Coordinate{originX, originY}, Coordinate{perimeterX, perimeterY}}
}

type DrawableFillColor struct {
	color MagickColor
}

func (*DrawableFillColor) isDrawable() {}

func NewDrawableFillColor(color MagickColor) *DrawableFillColor {
	return &DrawableFillColor{color}
}

type (
	//magick:prefix Path
	PathBase interface {
		isPath()
	}

	PathLineToAbs struct {
		coordinates []Coordinate
	}
)

func (*PathLineToAbs) isPath() {}

func NewPathLineToAbs(x, y float64) *PathLineToAbs {
	return &PathLineToAbs{[]Coordinate{{x, y}}}
}

func NewPathLineToAbsCoordinates(coordinates ...Coordinate) *PathLineToAbs {
	return &PathLineToAbs{coordinates}
}

// NewPathDebug is not scriptable.
//magick:skip
func NewPathLineToAbsDebug() *PathLineToAbs { return nil }

// Version is not a constructor.
func Version() string { return "1.0" }
