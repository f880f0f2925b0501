package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ets2dash/tdashboard/pkg/core"
)

// controller is the part of the pipeline driven by keyboard input.
type controller interface {
	SwitchDial() []core.Command
	SwitchSpeed() []core.Command
	CloseTips() []core.Command
}

// readControls maps one line of input to one dashboard control:
// "d" switches the big dial, "s" toggles km/h and mph, "t" closes the tips.
// It returns when r is exhausted or ctx is done.
func readControls(ctx context.Context, r io.Reader, c controller, logger *slog.Logger) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		input := strings.ToLower(strings.TrimSpace(sc.Text()))

		var cmds []core.Command
		switch input {
		case "":
			continue
		case "d", "dial":
			cmds = c.SwitchDial()
		case "s", "speed":
			cmds = c.SwitchSpeed()
		case "t", "tips":
			cmds = c.CloseTips()
		default:
			logger.Warn("Unknown control", "input", input)
			continue
		}
		logger.Debug("Control applied", "input", input, "commands", len(cmds))
	}
}
