// Package cliout formats hybridsearch's command output, using colored
// styling only when standard output is a terminal.
package cliout

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	phaseStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Printer writes CLI output, applying color only on a real terminal.
type Printer struct {
	out    io.Writer
	colored bool
}

// NewPrinter builds a Printer over out, detecting terminal-ness via isatty
// when out is *os.File.
func NewPrinter(out io.Writer) *Printer {
	colored := false
	if f, ok := out.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{out: out, colored: colored}
}

// PhaseHeader prints a phase label such as "INITIAL" or "REFINED".
func (p *Printer) PhaseHeader(phase string) {
	if p.colored {
		fmt.Fprintln(p.out, phaseStyle.Render(phase))
		return
	}
	fmt.Fprintln(p.out, phase)
}

// Hit prints one ranked hit line.
func (p *Printer) Hit(rank int, docID string, score float64) {
	if p.colored {
		fmt.Fprintf(p.out, "  %d. %s %s\n", rank, docID, scoreStyle.Render(fmt.Sprintf("%.4f", score)))
		return
	}
	fmt.Fprintf(p.out, "  %d. %s %.4f\n", rank, docID, score)
}
