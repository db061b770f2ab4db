package notify

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Console prints messages to a terminal, one line each.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	hl  *strings.Replacer
}

// NewConsole writes to color.Output (stdout) when out is nil. Colors are
// dropped automatically when the output is not a terminal.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = color.Output
	}
	return &Console{
		out: out,
		hl: strings.NewReplacer(
			glyphUp, color.New(color.FgGreen, color.Bold).Sprint(glyphUp),
			glyphDown, color.New(color.FgRed, color.Bold).Sprint(glyphDown),
		),
	}
}

func (c *Console) Deliver(_ context.Context, message string) error {
	line := c.hl.Replace(strings.TrimRight(message, "\n")) + "\n"

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.out, line)
	return err
}
