package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gwillem/youbot/pkg/export"
	"github.com/gwillem/youbot/pkg/robot"
	"github.com/gwillem/youbot/pkg/sim"
	"github.com/gwillem/youbot/pkg/trajectory"
)

type NextStateCommand struct {
	Arm      string  `long:"arm" default:"0,0,0,0,0" description:"Arm joint speeds (rad/s), comma separated"`
	Wheels   string  `long:"wheels" default:"10,10,10,10" description:"Wheel speeds (rad/s), comma separated"`
	Steps    int     `long:"steps" default:"100" description:"Number of steps"`
	Dt       float64 `long:"dt" default:"0.01" description:"Timestep (s)"`
	MaxSpeed float64 `long:"max-speed" default:"15" description:"Speed limit (rad/s), 0 for none"`
	Out      string  `short:"o" long:"out" default:"nextstate.csv" description:"Output CSV"`
}

func (c *NextStateCommand) Execute(args []string) error {
	arm, err := parseFloats(c.Arm, 5)
	if err != nil {
		return fmt.Errorf("--arm: %w", err)
	}
	wheels, err := parseFloats(c.Wheels, 4)
	if err != nil {
		return fmt.Errorf("--wheels: %w", err)
	}
	speeds, err := robot.SpeedsFromVector(append(arm, wheels...))
	if err != nil {
		return err
	}

	var cfg robot.Config
	frames := make([]sim.ConfigFrame, 0, c.Steps+1)
	frames = append(frames, sim.ConfigFrame{Config: cfg, Gripper: trajectory.Open})
	for i := 0; i < c.Steps; i++ {
		cfg = robot.NextState(cfg, speeds, c.Dt, c.MaxSpeed)
		frames = append(frames, sim.ConfigFrame{Config: cfg, Gripper: trajectory.Open})
	}

	if err := export.WriteConfigs(c.Out, frames); err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Wrote %d configurations to %s", len(frames), c.Out)))
	fmt.Printf("Final chassis: phi=%.4f x=%.4f y=%.4f\n", cfg.Chassis.Phi, cfg.Chassis.X, cfg.Chassis.Y)
	return nil
}

func parseFloats(s string, n int) ([]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
