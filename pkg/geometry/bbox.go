package geometry

import (
	"image"
	"math"
)

//Point is a position in the pixel space of one frame
type Point struct {
	X float64
	Y float64
}

//ImagePoint truncates p to integer pixel coordinates for drawing
func (p Point) ImagePoint() image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

//BoundingBox is an axis aligned box as produced by the detector: (X1,Y1) top-left, (X2,Y2) bottom-right
type BoundingBox struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

//Box builds a BoundingBox, ordering the coordinates so X1<=X2 and Y1<=Y2
func Box(x1, y1, x2, y2 float64) BoundingBox {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

//Center returns the middle point of the box
func (b BoundingBox) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

//Width returns the horizontal size of the box
func (b BoundingBox) Width() float64 {
	return b.X2 - b.X1
}

//Height returns the vertical size of the box
func (b BoundingBox) Height() float64 {
	return b.Y2 - b.Y1
}

//Foot returns the ground contact approximation of a person: horizontal center on the bottom edge
func (b BoundingBox) Foot() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: b.Y2}
}

//BottomLeft approximates the left foot of a person
func (b BoundingBox) BottomLeft() Point {
	return Point{X: b.X1, Y: b.Y2}
}

//BottomRight approximates the right foot of a person
func (b BoundingBox) BottomRight() Point {
	return Point{X: b.X2, Y: b.Y2}
}

//IsZero reports a box with all coordinates unset, the detector never emits one for a real object
func (b BoundingBox) IsZero() bool {
	return b.X1 == 0 && b.Y1 == 0 && b.X2 == 0 && b.Y2 == 0
}

//Rect converts the box to an integer rectangle for drawing
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}

//Lerp returns the box located t of the way from b to other, coordinate by coordinate
func (b BoundingBox) Lerp(other BoundingBox, t float64) BoundingBox {
	return BoundingBox{
		X1: b.X1 + (other.X1-b.X1)*t,
		Y1: b.Y1 + (other.Y1-b.Y1)*t,
		X2: b.X2 + (other.X2-b.X2)*t,
		Y2: b.Y2 + (other.Y2-b.Y2)*t,
	}
}

//Distance returns the euclidean distance between two points
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
