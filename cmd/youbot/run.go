package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gwillem/youbot/pkg/export"
	"github.com/gwillem/youbot/pkg/robot"
	"github.com/gwillem/youbot/pkg/sim"
)

type RunCommand struct {
	Scenario    string `short:"s" long:"scenario" description:"Built-in scenario (best, overshoot, newTask) instead of the config file"`
	Out         string `short:"o" long:"out" default:"results" description:"Output directory"`
	JointLimits bool   `long:"joint-limits" description:"Enable joint-limit avoidance"`
	Limits      string `long:"limits" description:"JSON file with joint limits (implies --joint-limits)"`
	Verbose     bool   `short:"v" long:"verbose" description:"Write debug entries to the log file"`
}

func (c *RunCommand) Execute(args []string) error {
	s, err := loadSettings(c.Scenario)
	if err != nil {
		return err
	}
	if err := applyLimits(s, c.JointLimits, c.Limits); err != nil {
		return err
	}

	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return err
	}
	logger, err := newFileLogger(filepath.Join(c.Out, "youbot.log"), c.Verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	runner, err := sim.NewRunner(sim.Options{Settings: s, Logger: logger.Sugar()})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(headerStyle.Render("youBot simulation"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("scenario %s, Kp=%g Ki=%g, %d reference frames",
		s.Scenario, s.Kp, s.Ki, len(runner.Reference()))))

	res, runErr := runner.Run(ctx)
	if res == nil {
		return runErr
	}

	// Partial results are still written when the run is interrupted.
	configs := filepath.Join(c.Out, "configs.csv")
	errs := filepath.Join(c.Out, "xerr.csv")
	plot := filepath.Join(c.Out, "xerr.png")
	err = multierr.Combine(
		export.WriteConfigs(configs, res.Configs),
		export.WriteErrors(errs, res.Errors),
		export.WriteTrajectory(filepath.Join(c.Out, "trajectory.csv"), runner.Reference()),
	)
	if len(res.Errors) > 0 {
		err = multierr.Append(err, export.PlotErrors(plot, res.Errors))
	}
	if err != nil {
		return multierr.Append(runErr, err)
	}
	if runErr != nil {
		return runErr
	}

	fmt.Println(successStyle.Render("Simulation complete"))
	fmt.Printf("  Configurations: %s (%d frames)\n", configs, len(res.Configs))
	fmt.Printf("  Error log:      %s\n", errs)
	fmt.Printf("  Error plot:     %s\n", plot)
	fmt.Printf("  Final error:    %.5f\n", res.FinalError())
	final := res.Configs[len(res.Configs)-1].Config
	if out := robot.DefaultLimits().Violations(final); len(out) > 0 {
		fmt.Println(lockedStyle.Render(fmt.Sprintf("  Final configuration outside mechanical range: %v", out)))
	}
	if res.LockedSteps > 0 {
		fmt.Printf("  Joint limits engaged on %d steps\n", res.LockedSteps)
	}
	return nil
}

// applyLimits enables joint-limit avoidance when requested, loading the
// limits from path when one is given.
func applyLimits(s *robot.Settings, enable bool, path string) error {
	if enable {
		s.JointLimits = true
	}
	if path == "" {
		return nil
	}
	limits, err := robot.LoadLimits(path)
	if err != nil {
		return err
	}
	s.Limits = limits
	s.JointLimits = true
	return nil
}

func newFileLogger(path string, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
