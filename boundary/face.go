// Package boundary dispatches per-face rules (outflow, periodic wrap,
// repulsive ghost-wall force, velocity reflection) for particles that
// have moved into a boundary-adjacent or OUTSIDE cell, including corner
// disambiguation for particles that crossed more than one face in a
// single step.
package boundary

import "github.com/pthm-cable/molsim/grid"

// Face names one of the six domain faces, ordered so that Axis/Sign fall
// out of simple arithmetic: even index is the negative side of an axis,
// odd is the positive side, and axis = index/2.
type Face int

const (
	FaceLeft Face = iota
	FaceRight
	FaceBottom
	FaceTop
	FaceBack
	FaceFront
)

// Axis returns which coordinate (0=x,1=y,2=z) this face bounds.
func (f Face) Axis() int { return int(f) / 2 }

// Sign returns -1 for the lower face of an axis, +1 for the upper face.
func (f Face) Sign() int {
	if int(f)%2 == 0 {
		return -1
	}
	return 1
}

// cellTypeBit returns the grid.CellType bit a GridCell carries when it
// touches this face.
func (f Face) cellTypeBit() grid.CellType {
	switch f {
	case FaceLeft:
		return grid.BoundaryLeft
	case FaceRight:
		return grid.BoundaryRight
	case FaceBottom:
		return grid.BoundaryBottom
	case FaceTop:
		return grid.BoundaryTop
	case FaceBack:
		return grid.BoundaryBack
	default:
		return grid.BoundaryFront
	}
}

// faceForAxisSign returns the Face bounding axis on the side matching
// sign (<0 for the lower face, >=0 for the upper face).
func faceForAxisSign(axis, sign int) Face {
	if sign < 0 {
		return Face(axis * 2)
	}
	return Face(axis*2 + 1)
}
