package main

import (
	"fmt"

	"github.com/gwillem/youbot/pkg/export"
	"github.com/gwillem/youbot/pkg/trajectory"
)

type TrajectoryCommand struct {
	Scenario string `short:"s" long:"scenario" description:"Built-in scenario (best, overshoot, newTask) instead of the config file"`
	K        int    `short:"k" long:"k" description:"Reference samples per 0.01 s (overrides config)"`
	Method   string `long:"method" choice:"screw" choice:"cartesian" description:"Interpolation method (overrides config)"`
	Out      string `short:"o" long:"out" default:"trajectory.csv" description:"Output CSV"`
}

func (c *TrajectoryCommand) Execute(args []string) error {
	s, err := loadSettings(c.Scenario)
	if err != nil {
		return err
	}
	if c.K > 0 {
		s.K = c.K
	}
	if c.Method != "" {
		s.Method = c.Method
	}
	if err := s.Validate(); err != nil {
		return err
	}

	params, err := trajectory.ParamsFromSettings(s)
	if err != nil {
		return err
	}
	frames, err := trajectory.Generate(params)
	if err != nil {
		return fmt.Errorf("generate trajectory: %w", err)
	}
	if err := export.WriteTrajectory(c.Out, frames); err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Wrote %d frames to %s", len(frames), c.Out)))
	fmt.Println(dimStyle.Render(fmt.Sprintf("scenario %s, %s interpolation, k=%d", s.Scenario, s.Method, s.K)))
	return nil
}
