// Package robot models the KUKA youBot mobile manipulator: its configuration,
// odometry, forward kinematics and Jacobian.
package robot

// JointName identifies an arm joint.
type JointName string

// Joint names for the youBot arm, base to tip.
const (
	Joint1 JointName = "joint1"
	Joint2 JointName = "joint2"
	Joint3 JointName = "joint3"
	Joint4 JointName = "joint4"
	Joint5 JointName = "joint5"
)

// WheelName identifies a mecanum wheel.
type WheelName string

// Wheel names in the order used by the configuration vector.
const (
	FrontLeft  WheelName = "front_left"
	FrontRight WheelName = "front_right"
	RearRight  WheelName = "rear_right"
	RearLeft   WheelName = "rear_left"
)

// AllJoints returns all joint names in order (matching arm angle indices 0-4).
func AllJoints() []JointName {
	return []JointName{
		Joint1,
		Joint2,
		Joint3,
		Joint4,
		Joint5,
	}
}

// AllWheels returns all wheel names in order (matching wheel angle indices 0-3).
func AllWheels() []WheelName {
	return []WheelName{
		FrontLeft,
		FrontRight,
		RearRight,
		RearLeft,
	}
}

// Index returns the joint's position in the arm angle vector, or -1.
func (j JointName) Index() int {
	for i, name := range AllJoints() {
		if name == j {
			return i
		}
	}
	return -1
}
