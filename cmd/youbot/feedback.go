package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gonum.org/v1/gonum/mat"

	"github.com/gwillem/youbot/pkg/control"
	"github.com/gwillem/youbot/pkg/robot"
	"github.com/gwillem/youbot/pkg/se3"
)

type FeedbackCommand struct {
	Kp      float64 `long:"kp" default:"0" description:"Proportional gain"`
	Ki      float64 `long:"ki" default:"0" description:"Integral gain"`
	Dt      float64 `long:"dt" default:"0.01" description:"Timestep (s)"`
	Damping float64 `long:"damping" default:"0" description:"Pseudo-inverse damping, 0 for the plain pseudo-inverse"`
	Tol     float64 `long:"tol" default:"0.001" description:"Pseudo-inverse singular value tolerance"`
}

// Test case: arm at (0, 0, 0.2, -1.6, 0) with the chassis at the origin,
// tracking a reference that moves 0.1 m forward and 0.2 m down in one step.
var (
	feedbackConfig = robot.Config{Arm: [5]float64{0, 0, 0.2, -1.6, 0}}
	feedbackXd     = mat.NewDense(4, 4, []float64{
		0, 0, 1, 0.5,
		0, 1, 0, 0,
		-1, 0, 0, 0.5,
		0, 0, 0, 1,
	})
	feedbackXdNext = mat.NewDense(4, 4, []float64{
		0, 0, 1, 0.6,
		0, 1, 0, 0,
		-1, 0, 0, 0.3,
		0, 0, 0, 1,
	})
)

func (c *FeedbackCommand) Execute(args []string) error {
	x, err := robot.EndEffector(feedbackConfig)
	if err != nil {
		return err
	}
	out, err := control.FeedbackControl(x, feedbackXd, feedbackXdNext,
		control.Gain(c.Kp), control.Gain(c.Ki), c.Dt, se3.Twist{})
	if err != nil {
		return err
	}
	adVd := se3.MulTwist(se3.Adjoint(se3.Mul(se3.TransInv(x), feedbackXd)), out.Vd)

	je, err := robot.Jacobian(feedbackConfig)
	if err != nil {
		return err
	}
	speeds, err := control.Speeds(je, out.V, c.Damping, c.Tol)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Feedback control"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("Kp=%g Ki=%g dt=%g damping=%g", c.Kp, c.Ki, c.Dt, c.Damping)))
	fmt.Println()

	rows := [][]string{
		twistRow("Vd", out.Vd),
		twistRow("Ad·Vd", adVd),
		twistRow("V", out.V),
		twistRow("Xerr", out.Xerr),
	}
	fmt.Println(renderTable([]string{"", "ωx", "ωy", "ωz", "vx", "vy", "vz"}, rows))
	fmt.Println()

	headers := []string{""}
	row := []string{"speed"}
	for i, name := range robot.AllWheels() {
		headers = append(headers, string(name))
		row = append(row, fmt.Sprintf("%.3f", speeds.Wheels[i]))
	}
	for i, name := range robot.AllJoints() {
		headers = append(headers, string(name))
		row = append(row, fmt.Sprintf("%.3f", speeds.Arm[i]))
	}
	fmt.Println(renderTable(headers, [][]string{row}))
	return nil
}

func twistRow(label string, t se3.Twist) []string {
	row := []string{label}
	for _, v := range t {
		row = append(row, fmt.Sprintf("%.4f", v))
	}
	return row
}

func renderTable(headers []string, rows [][]string) string {
	headerCell := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	labelCell := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCell
			case col == 0:
				return labelCell
			default:
				return cell
			}
		}).
		Render()
}
