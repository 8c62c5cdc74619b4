package vars

import (
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"github.com/cwbudde/graphfit/internal/variable"
)

// Orientation3DType is the stable type name for Orientation3D variables.
const Orientation3DType = "orientation3d"

// Orientation3D is a 3D rotation stored as a unit quaternion (w, x, y, z).
// It holds 4 elements for 3 rotational degrees of freedom, so updates go
// through a multiplicative local parameterization instead of elementwise
// addition.
type Orientation3D struct {
	deviceID uint64
	stamp    float64
	uid      uuid.UUID
	data     []float64
}

// NewOrientation3D creates an orientation for the given device id and
// timestamp, initialized to the identity rotation.
func NewOrientation3D(deviceID uint64, stamp float64) *Orientation3D {
	var m variable.Metadata
	m.PutUint64(deviceID).PutFloat64(stamp)

	o := &Orientation3D{
		deviceID: deviceID,
		stamp:    stamp,
		uid:      variable.FromMetadata(Orientation3DType, m.Bytes()),
		data:     []float64{1, 0, 0, 0},
	}
	variable.CheckSize(Orientation3DType, o.data, o.Size())
	return o
}

// DeviceID returns the device identity this orientation was created for.
func (o *Orientation3D) DeviceID() uint64 { return o.deviceID }

// Stamp returns the timestamp in seconds.
func (o *Orientation3D) Stamp() float64 { return o.stamp }

func (o *Orientation3D) Type() string    { return Orientation3DType }
func (o *Orientation3D) UUID() uuid.UUID { return o.uid }
func (o *Orientation3D) Size() int       { return 4 }
func (o *Orientation3D) Data() []float64 { return o.data }

func (o *Orientation3D) Print(w io.Writer) {
	fmt.Fprintf(w, "%s{id: %d, stamp: %.6f, uuid: %s, w: %g, x: %g, y: %g, z: %g}\n",
		Orientation3DType, o.deviceID, o.stamp, o.uid,
		o.data[0], o.data[1], o.data[2], o.data[3])
}

// Clone returns a deep copy with equal identity but independent storage.
func (o *Orientation3D) Clone() variable.Variable {
	c := NewOrientation3D(o.deviceID, o.stamp)
	copy(c.data, o.data)
	return c
}

// LocalParameterization returns a fresh quaternion parameterization with a
// 3-dimensional tangent space. Each call returns an independent value.
func (o *Orientation3D) LocalParameterization() variable.Parameterization {
	return QuaternionParameterization{}
}

// QuaternionParameterization composes a 3-element angle-axis tangent
// update with a unit quaternion multiplicatively: result = exp(delta) * x,
// renormalized to guard against drift. It is stateless.
type QuaternionParameterization struct{}

func (QuaternionParameterization) GlobalSize() int { return 4 }
func (QuaternionParameterization) LocalSize() int  { return 3 }

// Plus computes result = exp(delta) * x. result may alias x.
func (QuaternionParameterization) Plus(x, delta, result []float64) error {
	if len(x) < 4 || len(result) < 4 {
		return fmt.Errorf("quaternion parameterization: need 4 global elements, got x=%d result=%d", len(x), len(result))
	}
	if len(delta) < 3 {
		return fmt.Errorf("quaternion parameterization: need 3 tangent elements, got %d", len(delta))
	}

	// Map the angle-axis delta onto a unit quaternion.
	angle := math.Sqrt(delta[0]*delta[0] + delta[1]*delta[1] + delta[2]*delta[2])
	var dw, dx, dy, dz float64
	if angle > 1e-12 {
		s := math.Sin(angle/2) / angle
		dw = math.Cos(angle / 2)
		dx = delta[0] * s
		dy = delta[1] * s
		dz = delta[2] * s
	} else {
		// Small-angle limit keeps the update smooth at delta = 0.
		dw = 1
		dx = delta[0] / 2
		dy = delta[1] / 2
		dz = delta[2] / 2
	}

	// Hamilton product (dw, dx, dy, dz) * (xw, xx, xy, xz).
	xw, xx, xy, xz := x[0], x[1], x[2], x[3]
	rw := dw*xw - dx*xx - dy*xy - dz*xz
	rx := dw*xx + dx*xw + dy*xz - dz*xy
	ry := dw*xy - dx*xz + dy*xw + dz*xx
	rz := dw*xz + dx*xy - dy*xx + dz*xw

	norm := math.Sqrt(rw*rw + rx*rx + ry*ry + rz*rz)
	if norm == 0 {
		return fmt.Errorf("quaternion parameterization: degenerate result")
	}

	result[0] = rw / norm
	result[1] = rx / norm
	result[2] = ry / norm
	result[3] = rz / norm
	return nil
}
