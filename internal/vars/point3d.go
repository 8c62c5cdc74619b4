package vars

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/cwbudde/graphfit/internal/variable"
)

// Point3DType is the stable type name for Point3D variables.
const Point3DType = "point3d"

// Point3D is a 3D landmark position (x, y, z) with additive updates.
type Point3D struct {
	landmarkID uint64
	stamp      float64
	uid        uuid.UUID
	data       []float64
}

// NewPoint3D creates a 3D point for the given landmark id and timestamp.
func NewPoint3D(landmarkID uint64, stamp float64) *Point3D {
	var m variable.Metadata
	m.PutUint64(landmarkID).PutFloat64(stamp)

	p := &Point3D{
		landmarkID: landmarkID,
		stamp:      stamp,
		uid:        variable.FromMetadata(Point3DType, m.Bytes()),
		data:       make([]float64, 3),
	}
	variable.CheckSize(Point3DType, p.data, p.Size())
	return p
}

// LandmarkID returns the landmark identity this point was created for.
func (p *Point3D) LandmarkID() uint64 { return p.landmarkID }

// Stamp returns the timestamp in seconds.
func (p *Point3D) Stamp() float64 { return p.stamp }

func (p *Point3D) Type() string    { return Point3DType }
func (p *Point3D) UUID() uuid.UUID { return p.uid }
func (p *Point3D) Size() int       { return 3 }
func (p *Point3D) Data() []float64 { return p.data }

func (p *Point3D) Print(w io.Writer) {
	fmt.Fprintf(w, "%s{id: %d, stamp: %.6f, uuid: %s, x: %g, y: %g, z: %g}\n",
		Point3DType, p.landmarkID, p.stamp, p.uid, p.data[0], p.data[1], p.data[2])
}

// Clone returns a deep copy with equal identity but independent storage.
func (p *Point3D) Clone() variable.Variable {
	c := NewPoint3D(p.landmarkID, p.stamp)
	copy(c.data, p.data)
	return c
}

// LocalParameterization returns nil: additive updates suffice.
func (p *Point3D) LocalParameterization() variable.Parameterization {
	return nil
}
