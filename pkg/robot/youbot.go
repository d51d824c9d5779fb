package robot

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/gwillem/youbot/pkg/se3"
)

// Chassis geometry, in meters.
const (
	WheelRadius   = 0.0475
	HalfLength    = 0.235
	HalfWidth     = 0.15
	ChassisHeight = 0.0963
)

// CubeHalfHeight is the height of a resting cube's frame above the floor.
const CubeHalfHeight = 0.025

// BaseToArm returns Tb0, the fixed offset from the chassis frame {b} to the
// arm base frame {0}.
func BaseToArm() *mat.Dense {
	return se3.RpToTrans(se3.Identity(3), r3.Vector{X: 0.1662, Y: 0, Z: 0.0026})
}

// HomeEndEffector returns M0e, the end-effector frame relative to {0} with
// all arm joints at zero.
func HomeEndEffector() *mat.Dense {
	return se3.RpToTrans(se3.Identity(3), r3.Vector{X: 0.033, Y: 0, Z: 0.6546})
}

// ArmScrewAxes returns the 6x5 body-frame screw axes of the arm joints.
func ArmScrewAxes() *mat.Dense {
	return mat.NewDense(6, 5, []float64{
		0, 0, 0, 0, 0,
		0, -1, -1, -1, 0,
		1, 0, 0, 0, 1,
		0, -0.5076, -0.3526, -0.2176, 0,
		0.033, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
	})
}

// ChassisTransform returns Tsb for a chassis pose.
func ChassisTransform(c Chassis) *mat.Dense {
	return PlanarTransform(c.X, c.Y, c.Phi, ChassisHeight)
}

// PlanarTransform returns a transform rotated by theta about z and placed at
// (x, y, z).
func PlanarTransform(x, y, theta, z float64) *mat.Dense {
	sin, cos := math.Sincos(theta)
	return mat.NewDense(4, 4, []float64{
		cos, -sin, 0, x,
		sin, cos, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	})
}

// CubeTransform returns Tsc for a cube resting on the floor at (x, y) with
// heading theta.
func CubeTransform(x, y, theta float64) *mat.Dense {
	return PlanarTransform(x, y, theta, CubeHalfHeight)
}

// ArmTransform returns T0e for the given arm angles.
func ArmTransform(arm [5]float64) (*mat.Dense, error) {
	return se3.FKinBody(HomeEndEffector(), ArmScrewAxes(), arm[:])
}

// EndEffector returns Tse = Tsb·Tb0·T0e for a configuration.
func EndEffector(cfg Config) (*mat.Dense, error) {
	t0e, err := ArmTransform(cfg.Arm)
	if err != nil {
		return nil, fmt.Errorf("arm forward kinematics: %w", err)
	}
	return se3.Mul(ChassisTransform(cfg.Chassis), BaseToArm(), t0e), nil
}

// Jacobian returns the 6x9 end-effector body Jacobian Je = [Jbase | Jarm].
// The first four columns map wheel speeds, the last five arm joint speeds.
func Jacobian(cfg Config) (*mat.Dense, error) {
	jarm, err := se3.JacobianBody(ArmScrewAxes(), cfg.Arm[:])
	if err != nil {
		return nil, fmt.Errorf("arm jacobian: %w", err)
	}
	t0e, err := ArmTransform(cfg.Arm)
	if err != nil {
		return nil, fmt.Errorf("arm forward kinematics: %w", err)
	}

	// Jbase = [Ad(T0e⁻¹·Tb0⁻¹)]·F6
	ad := se3.Adjoint(se3.Mul(se3.TransInv(t0e), se3.TransInv(BaseToArm())))
	var jbase mat.Dense
	jbase.Mul(ad, chassisF6())

	je := mat.NewDense(6, 9, nil)
	je.Slice(0, 6, 0, 4).(*mat.Dense).Copy(&jbase)
	je.Slice(0, 6, 4, 9).(*mat.Dense).Copy(jarm)
	return je, nil
}

// chassisF6 embeds F in the 6x4 matrix mapping wheel speeds to the full body
// twist of the chassis.
func chassisF6() *mat.Dense {
	f := wheelMatrix()
	f6 := mat.NewDense(6, 4, nil)
	f6.Slice(2, 5, 0, 4).(*mat.Dense).Copy(f)
	return f6
}
