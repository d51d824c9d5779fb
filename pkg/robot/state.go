package robot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ConfigSize is the length of the flattened configuration vector.
const ConfigSize = 12

// SpeedSize is the length of the flattened speed vector.
const SpeedSize = 9

// Chassis is the planar pose of the mobile base in the space frame.
type Chassis struct {
	Phi float64 `json:"phi"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// Config is the full robot configuration: chassis pose, arm joint angles and
// wheel angles.
type Config struct {
	Chassis Chassis    `json:"chassis"`
	Arm     [5]float64 `json:"arm"`
	Wheels  [4]float64 `json:"wheels"`
}

// Vector flattens the configuration as phi, x, y, arm angles, wheel angles.
func (c Config) Vector() []float64 {
	v := make([]float64, 0, ConfigSize)
	v = append(v, c.Chassis.Phi, c.Chassis.X, c.Chassis.Y)
	v = append(v, c.Arm[:]...)
	v = append(v, c.Wheels[:]...)
	return v
}

// ConfigFromVector is the inverse of Config.Vector.
func ConfigFromVector(v []float64) (Config, error) {
	if len(v) != ConfigSize {
		return Config{}, fmt.Errorf("config vector has %d elements, want %d", len(v), ConfigSize)
	}
	var c Config
	c.Chassis = Chassis{Phi: v[0], X: v[1], Y: v[2]}
	copy(c.Arm[:], v[3:8])
	copy(c.Wheels[:], v[8:12])
	return c, nil
}

// Speeds holds arm joint speeds and wheel speeds, in rad/s.
type Speeds struct {
	Arm    [5]float64
	Wheels [4]float64
}

// Vector flattens the speeds as arm joint speeds then wheel speeds.
func (s Speeds) Vector() []float64 {
	v := make([]float64, 0, SpeedSize)
	v = append(v, s.Arm[:]...)
	v = append(v, s.Wheels[:]...)
	return v
}

// SpeedsFromVector is the inverse of Speeds.Vector.
func SpeedsFromVector(v []float64) (Speeds, error) {
	if len(v) != SpeedSize {
		return Speeds{}, fmt.Errorf("speed vector has %d elements, want %d (5 arm joints + 4 wheels)", len(v), SpeedSize)
	}
	var s Speeds
	copy(s.Arm[:], v[:5])
	copy(s.Wheels[:], v[5:])
	return s, nil
}

// Clamp limits every speed to [-limit, limit]. A non-positive limit disables
// clamping.
func (s Speeds) Clamp(limit float64) Speeds {
	if limit <= 0 {
		return s
	}
	for i := range s.Arm {
		s.Arm[i] = math.Max(-limit, math.Min(limit, s.Arm[i]))
	}
	for i := range s.Wheels {
		s.Wheels[i] = math.Max(-limit, math.Min(limit, s.Wheels[i]))
	}
	return s
}

// NextState advances cfg by one Euler step of length dt: joint and wheel
// angles integrate their (clamped) speeds and the chassis follows the wheel
// odometry.
func NextState(cfg Config, speeds Speeds, dt, maxSpeed float64) Config {
	speeds = speeds.Clamp(maxSpeed)

	next := cfg
	for i := range next.Arm {
		next.Arm[i] += speeds.Arm[i] * dt
	}

	var dWheels [4]float64
	for i := range next.Wheels {
		dWheels[i] = speeds.Wheels[i] * dt
		next.Wheels[i] += dWheels[i]
	}

	next.Chassis = Odometry(cfg.Chassis, dWheels)
	return next
}

// Odometry returns the chassis pose after the wheels turn by dWheels.
func Odometry(c Chassis, dWheels [4]float64) Chassis {
	vb := BodyTwist(dWheels)
	wz, vx, vy := vb[0], vb[1], vb[2]

	// Displacement in the body frame, integrating the planar twist exactly.
	sw, cw := arcFactors(wz)
	dx := vx*sw - vy*cw
	dy := vy*sw + vx*cw

	sin, cos := math.Sincos(c.Phi)
	return Chassis{
		Phi: c.Phi + wz,
		X:   c.X + cos*dx - sin*dy,
		Y:   c.Y + sin*dx + cos*dy,
	}
}

// arcFactors returns sin(w)/w and (1-cos(w))/w, using their series near zero
// so that slow turns still integrate.
func arcFactors(w float64) (s, c float64) {
	if math.Abs(w) < 1e-4 {
		w2 := w * w
		return 1 - w2/6, w/2 - w*w2/24
	}
	return math.Sin(w) / w, (1 - math.Cos(w)) / w
}

// BodyTwist returns the planar chassis twist (wz, vx, vy) produced by wheel
// motion dWheels.
func BodyTwist(dWheels [4]float64) [3]float64 {
	var vb mat.VecDense
	vb.MulVec(wheelMatrix(), mat.NewVecDense(4, dWheels[:]))
	return [3]float64{vb.AtVec(0), vb.AtVec(1), vb.AtVec(2)}
}

// wheelMatrix is F, mapping wheel speeds to the planar body twist.
func wheelMatrix() *mat.Dense {
	a := 1 / (HalfLength + HalfWidth)
	f := mat.NewDense(3, 4, []float64{
		-a, a, a, -a,
		1, 1, 1, 1,
		-1, 1, -1, 1,
	})
	f.Scale(WheelRadius/4, f)
	return f
}
