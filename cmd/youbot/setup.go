package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/youbot/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("youBot Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━"))
	fmt.Println()

	// Step 1: pick a scenario
	current, err := loadSettings("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring %s: %v\n", opts.Config, err)
		current = robot.DefaultConfig()
	}
	name := current.Scenario
	if err := chooseScenario(&name); err != nil {
		return err
	}
	s := current
	if name != current.Scenario {
		if s, err = robot.Scenario(name); err != nil {
			return err
		}
	}

	// Step 2: tune the controller
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Controller ━━━"))
	fmt.Println()
	if err := tuneSettings(s); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	if err := saveSettings(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(renderSettings(s))
	fmt.Println()
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Run the simulation with: " + headerStyle.Render("youbot run") + " or " + headerStyle.Render("youbot watch"))
	return nil
}

var scenarioDescriptions = map[string]string{
	"best":      "Feedforward plus P control, converges before the grasp",
	"overshoot": "Large integral gain, overshoots then settles",
	"newTask":   "Different cube placement, light integral action",
}

func chooseScenario(name *string) error {
	var options []huh.Option[string]
	for _, n := range robot.ScenarioNames() {
		options = append(options, huh.NewOption(fmt.Sprintf("%s - %s", n, scenarioDescriptions[n]), n))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which scenario?").
				Description("Sets the cube poses and default gains").
				Options(options...).
				Value(name),
		),
	)
	return form.Run()
}

func tuneSettings(s *robot.Settings) error {
	kp := strconv.FormatFloat(s.Kp, 'g', -1, 64)
	ki := strconv.FormatFloat(s.Ki, 'g', -1, 64)
	k := strconv.Itoa(s.K)
	maxSpeed := strconv.FormatFloat(s.MaxSpeed, 'g', -1, 64)
	damping := strconv.FormatFloat(s.Damping, 'g', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Kp").
				Description("Proportional gain, applied to all six error components").
				Value(&kp).
				Validate(nonNegative),
			huh.NewInput().
				Title("Ki").
				Description("Integral gain").
				Value(&ki).
				Validate(nonNegative),
			huh.NewInput().
				Title("k").
				Description("Control steps per 0.01 s").
				Value(&k).
				Validate(positiveInt),
			huh.NewInput().
				Title("Max speed").
				Description("Wheel and joint speed limit in rad/s, 0 for none").
				Value(&maxSpeed).
				Validate(nonNegative),
			huh.NewInput().
				Title("Damping").
				Description("Damped pseudo-inverse factor, keeps speeds bounded near singularities").
				Value(&damping).
				Validate(nonNegative),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Interpolation").
				Options(
					huh.NewOption("Screw motion", robot.MethodScrew),
					huh.NewOption("Cartesian (straight-line position)", robot.MethodCartesian),
				).
				Value(&s.Method),
			huh.NewSelect[int]().
				Title("Time scaling").
				Options(
					huh.NewOption("Cubic", 3),
					huh.NewOption("Quintic", 5),
				).
				Value(&s.TimeScaling),
			huh.NewConfirm().
				Title("Avoid joint limits?").
				Description("Freezes joints that would move further out of range").
				Value(&s.JointLimits),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	// Inputs were validated by the form.
	s.Kp, _ = strconv.ParseFloat(kp, 64)
	s.Ki, _ = strconv.ParseFloat(ki, 64)
	s.K, _ = strconv.Atoi(k)
	s.MaxSpeed, _ = strconv.ParseFloat(maxSpeed, 64)
	s.Damping, _ = strconv.ParseFloat(damping, 64)
	return nil
}

func nonNegative(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("not a number")
	}
	if f < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func positiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fmt.Errorf("must be a whole number of at least 1")
	}
	return nil
}

func renderSettings(s *robot.Settings) string {
	limits := "off"
	if s.JointLimits {
		limits = "on"
	}
	rows := [][]string{
		{"scenario", s.Scenario},
		{"cube initial", fmt.Sprintf("(%.2f, %.2f, %.3f)", s.CubeInitial.X, s.CubeInitial.Y, s.CubeInitial.Theta)},
		{"cube final", fmt.Sprintf("(%.2f, %.2f, %.3f)", s.CubeFinal.X, s.CubeFinal.Y, s.CubeFinal.Theta)},
		{"Kp / Ki", fmt.Sprintf("%g / %g", s.Kp, s.Ki)},
		{"k", strconv.Itoa(s.K)},
		{"max speed", fmt.Sprintf("%g rad/s", s.MaxSpeed)},
		{"damping", fmt.Sprintf("%g", s.Damping)},
		{"trajectory", fmt.Sprintf("%s, order %d", s.Method, s.TimeScaling)},
		{"joint limits", limits},
	}
	return renderTable([]string{"Setting", "Value"}, rows)
}
