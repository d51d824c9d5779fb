// Package youbot provides trajectory generation, task-space feedback control
// and kinematic simulation for the KUKA youBot mobile manipulator.
//
// The youBot is a four-wheel mecanum base carrying a five-joint arm. The
// simulator plans a pick-and-place reference for the gripper, tracks it with
// feedforward plus PI control, and writes CSV files that the CoppeliaSim
// youBot scenes play back.
//
// # Installation
//
//	go install github.com/gwillem/youbot/cmd/youbot@latest
//
// # Usage
//
// Optionally pick a scenario and tune the controller:
//
//	youbot setup
//
// Then run the simulation headless, or watch the error converge live:
//
//	youbot run --out results
//	youbot watch
//
// The building blocks are also available on their own:
//
//	youbot nextstate --wheels -10,10,10,-10   # odometry test
//	youbot trajectory --out traj.csv          # reference only
//	youbot feedback --kp 1                    # one controller step
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/youbot: CLI with setup, run, watch and test subcommands
//   - pkg/se3: Rigid-body motion: SO(3)/SE(3) exponentials and logarithms,
//     forward kinematics, Jacobians and trajectories
//   - pkg/robot: youBot model, odometry, joint limits and configuration
//   - pkg/trajectory: Pick-and-place reference trajectory
//   - pkg/control: Feedback control and joint-limit avoidance
//   - pkg/sim: Closed-loop simulation runner
//   - pkg/export: CSV output and error plots
package youbot
