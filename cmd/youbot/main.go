package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/youbot/pkg/robot"
)

type Options struct {
	Config string `short:"c" long:"config" default:"youbot.json" description:"Configuration file"`

	NextState  NextStateCommand  `command:"nextstate" description:"Step the robot at constant wheel and joint speeds"`
	Trajectory TrajectoryCommand `command:"trajectory" alias:"traj" description:"Generate the pick-and-place reference trajectory"`
	Feedback   FeedbackCommand   `command:"feedback" description:"Evaluate the feedback controller on a single test pose"`
	Run        RunCommand        `command:"run" description:"Run the full simulation and write CSV, plot and log output"`
	Watch      WatchCommand      `command:"watch" description:"Run the simulation with a live error chart"`
	Plot       PlotCommand       `command:"plot" description:"Plot an error log written by run"`
	Setup      SetupCommand      `command:"setup" description:"Choose a scenario and tune the controller"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "youbot - mobile manipulation for the KUKA youBot: trajectory generation, feedback control and kinematic simulation"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// loadSettings reads the config file, falling back to the defaults when the
// default file is absent. A non-empty scenario replaces the loaded settings.
func loadSettings(scenario string) (*robot.Settings, error) {
	if scenario != "" {
		return robot.Scenario(scenario)
	}

	var (
		s   *robot.Settings
		err error
	)
	if opts.Config == robot.DefaultConfigFile {
		if !robot.ConfigExists() {
			return robot.DefaultConfig(), nil
		}
		s, err = robot.LoadConfig()
	} else {
		s, err = robot.LoadConfigFrom(opts.Config)
	}
	if err != nil {
		return nil, err
	}
	fmt.Println(dimStyle.Render("Loaded configuration from " + opts.Config))
	return s, nil
}

func saveSettings(s *robot.Settings) error {
	if opts.Config == robot.DefaultConfigFile {
		return s.Save()
	}
	return s.SaveTo(opts.Config)
}
