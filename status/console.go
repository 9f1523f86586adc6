package status

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// ConsoleListener prints export log to terminal, warnings in yellow and
// errors in bold red. Colours are dropped when w is not a terminal.
type ConsoleListener struct {
	w   io.Writer
	out *termenv.Output
}

func NewConsoleListener(w io.Writer) *ConsoleListener {
	return &ConsoleListener{w: w, out: termenv.NewOutput(w)}
}

func (c *ConsoleListener) Log(r Record) {
	s := c.out.String(r.Message)
	switch r.Type {
	case WARNING:
		s = s.Foreground(c.out.Color("3"))
	case ERROR:
		s = s.Foreground(c.out.Color("1")).Bold()
	}
	fmt.Fprintln(c.w, s.String())
}
