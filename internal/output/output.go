// Package output renders command results as styled text, JSON or YAML.
//
// Text output is coloured only when writing to a terminal, unless the caller
// forces it either way.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"sigs.k8s.io/yaml"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type styles struct {
	header  lipgloss.Style
	file    lipgloss.Style
	seen    lipgloss.Style
	ok      lipgloss.Style
	failed  lipgloss.Style
	ignored lipgloss.Style
	key     lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Bold(true),
		file:    r.NewStyle().Foreground(lipgloss.Color("6")),
		seen:    r.NewStyle().Foreground(lipgloss.Color("240")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		failed:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		ignored: r.NewStyle().Foreground(lipgloss.Color("3")),
		key:     r.NewStyle().Foreground(lipgloss.Color("5")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Printer writes results to one writer in one format.
type Printer struct {
	out    io.Writer
	format Format
	styles styles
}

// New returns a Printer. color is auto, always or never.
func New(out io.Writer, format, color string) (*Printer, error) {
	f := Format(format)
	switch f {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	r := lipgloss.NewRenderer(out)
	if UseColor(out, color) {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{out: out, format: f, styles: newStyles(r)}, nil
}

// UseColor decides whether w gets ANSI colours.
func UseColor(w io.Writer, color string) bool {
	switch color {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) Format() Format {
	return p.format
}

// encode writes v as JSON or YAML. It reports false for text output.
func (p *Printer) encode(v any) (bool, error) {
	switch p.format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintln(p.out, string(data))
		return true, err
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = p.out.Write(data)
		return true, err
	default:
		return false, nil
	}
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.out, s)
}
