package vars

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/cwbudde/graphfit/internal/variable"
)

// Point2DType is the stable type name for Point2D variables.
const Point2DType = "point2d"

// Point2D is a 2D landmark position (x, y). Updates are plain additive, so
// it has no local parameterization.
type Point2D struct {
	landmarkID uint64
	stamp      float64
	uid        uuid.UUID
	data       []float64
}

// NewPoint2D creates a 2D point for the given landmark id and timestamp
// (seconds). The pair (landmarkID, stamp) is the identity metadata: two
// points constructed from the same pair are the same variable.
func NewPoint2D(landmarkID uint64, stamp float64) *Point2D {
	var m variable.Metadata
	m.PutUint64(landmarkID).PutFloat64(stamp)

	p := &Point2D{
		landmarkID: landmarkID,
		stamp:      stamp,
		uid:        variable.FromMetadata(Point2DType, m.Bytes()),
		data:       make([]float64, 2),
	}
	variable.CheckSize(Point2DType, p.data, p.Size())
	return p
}

// LandmarkID returns the landmark identity this point was created for.
func (p *Point2D) LandmarkID() uint64 { return p.landmarkID }

// Stamp returns the timestamp in seconds.
func (p *Point2D) Stamp() float64 { return p.stamp }

func (p *Point2D) Type() string    { return Point2DType }
func (p *Point2D) UUID() uuid.UUID { return p.uid }
func (p *Point2D) Size() int       { return 2 }
func (p *Point2D) Data() []float64 { return p.data }

func (p *Point2D) Print(w io.Writer) {
	fmt.Fprintf(w, "%s{id: %d, stamp: %.6f, uuid: %s, x: %g, y: %g}\n",
		Point2DType, p.landmarkID, p.stamp, p.uid, p.data[0], p.data[1])
}

// Clone returns a deep copy with equal identity but independent storage.
func (p *Point2D) Clone() variable.Variable {
	c := NewPoint2D(p.landmarkID, p.stamp)
	copy(c.data, p.data)
	return c
}

// LocalParameterization returns nil: additive updates suffice.
func (p *Point2D) LocalParameterization() variable.Parameterization {
	return nil
}
