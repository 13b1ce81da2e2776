// Package view maintains the transient, device-space representation of
// the model: one State per visible cell, with scaled bounds, rotation
// and resolved absolute edge points. States are what the interaction
// layer hit-tests against and what live preview temporarily mutates.
package view

import (
	"dragkit/diagram"
	"dragkit/geometry"
)

// State is the device-space snapshot of one cell. Vertex states carry
// scaled bounds and rotation; edge states carry the resolved absolute
// point list including both terminal points.
type State struct {
	Cell *diagram.Cell

	X, Y          float64
	Width, Height float64
	Rotation      float64

	// AbsolutePoints is the full routed point list of an edge:
	// terminal point, interior waypoints, terminal point.
	AbsolutePoints []geometry.Point

	// Origin is the accumulated parent offset in unscaled model
	// coordinates, used to map device points back into a cell's
	// geometry space.
	Origin geometry.Point
}

// Bounds returns the unrotated device-space bounds.
func (s *State) Bounds() geometry.Rect {
	return geometry.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// SetBounds overwrites the device-space bounds.
func (s *State) SetBounds(r geometry.Rect) {
	s.X, s.Y, s.Width, s.Height = r.X, r.Y, r.Width, r.Height
}

// BoundingBox returns the axis-aligned box containing the rotated shape.
func (s *State) BoundingBox() geometry.Rect {
	return geometry.BoundingBox(s.Bounds(), s.Rotation)
}

// Center returns the center of the device-space bounds.
func (s *State) Center() geometry.Point {
	return s.Bounds().Center()
}

// RoutingCenter is the point floating edges aim at.
func (s *State) RoutingCenter() geometry.Point {
	return s.Center()
}

// Clone returns a deep copy, used to save a state before live preview
// mutates it.
func (s *State) Clone() *State {
	c := *s
	if s.AbsolutePoints != nil {
		c.AbsolutePoints = make([]geometry.Point, len(s.AbsolutePoints))
		copy(c.AbsolutePoints, s.AbsolutePoints)
	}
	return &c
}

// RestoreFrom copies the geometric fields of saved back into s, leaving
// the cell reference untouched.
func (s *State) RestoreFrom(saved *State) {
	s.X, s.Y = saved.X, saved.Y
	s.Width, s.Height = saved.Width, saved.Height
	s.Rotation = saved.Rotation
	s.Origin = saved.Origin
	if saved.AbsolutePoints == nil {
		s.AbsolutePoints = nil
	} else {
		s.AbsolutePoints = make([]geometry.Point, len(saved.AbsolutePoints))
		copy(s.AbsolutePoints, saved.AbsolutePoints)
	}
}

// HitTest reports whether a device point hits the cell shape, honoring
// rotation for vertices and a tolerance band around edge segments.
func (s *State) HitTest(p geometry.Point, tolerance float64) bool {
	if s.Cell.Edge {
		for i := 0; i+1 < len(s.AbsolutePoints); i++ {
			if geometry.SegmentDistance(s.AbsolutePoints[i], s.AbsolutePoints[i+1], p) <= tolerance {
				return true
			}
		}
		return false
	}
	if s.Rotation != 0 {
		// Map the point into the unrotated frame instead of rotating
		// the rectangle.
		p = geometry.RotatePointDeg(p, -s.Rotation, s.Center())
	}
	return s.Bounds().Grow(tolerance).Contains(p)
}
