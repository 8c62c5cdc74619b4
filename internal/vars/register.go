package vars

import "github.com/cwbudde/graphfit/internal/variable"

// RegisterAll registers every concrete variable type shipped with this
// package, enabling type-name dispatch when restoring snapshots.
func RegisterAll(r *variable.Registry) error {
	if err := r.Register(Point2DType, func() variable.Variable { return NewPoint2D(0, 0) }); err != nil {
		return err
	}
	if err := r.Register(Point3DType, func() variable.Variable { return NewPoint3D(0, 0) }); err != nil {
		return err
	}
	return r.Register(Orientation3DType, func() variable.Variable { return NewOrientation3D(0, 0) })
}
