package main

import (
	"fmt"
	"strings"

	"github.com/gwillem/youbot/pkg/export"
	"github.com/gwillem/youbot/pkg/sim"
)

type PlotCommand struct {
	Out  string `short:"o" long:"out" description:"Output PNG (default: input with .png extension)"`
	Args struct {
		Input string `positional-arg-name:"xerr.csv" required:"yes"`
	} `positional-args:"yes"`
}

func (c *PlotCommand) Execute(args []string) error {
	rows, err := export.ReadFile(c.Args.Input)
	if err != nil {
		return err
	}
	samples := make([]sim.ErrorSample, len(rows))
	for i, row := range rows {
		if len(row) != 7 {
			return fmt.Errorf("%s row %d: %d columns, want 7", c.Args.Input, i+1, len(row))
		}
		samples[i].Time = row[0]
		copy(samples[i].Xerr[:], row[1:])
	}

	out := c.Out
	if out == "" {
		out = strings.TrimSuffix(c.Args.Input, ".csv") + ".png"
	}
	if err := export.PlotErrors(out, samples); err != nil {
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("Wrote %s (%d samples)", out, len(samples))))
	return nil
}
