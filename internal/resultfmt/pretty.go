package resultfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ndtext/internal/driver"
	"ndtext/internal/nd"
)

// Printer renders results for a terminal. Without Color it writes plain
// text.
type Printer struct {
	Color bool
	Quiet bool // Batch lists failing jobs only
	Width int  // table width; <= 0 means 100

	renderer *lipgloss.Renderer
}

// NewPrinter returns a printer for w.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{Color: color, renderer: lipgloss.NewRenderer(w)}
}

func (p *Printer) style(color string, bold bool) func(string) string {
	if !p.Color {
		return func(s string) string { return s }
	}
	r := p.renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	st := r.NewStyle().Foreground(lipgloss.Color(color)).Bold(bold)
	return func(s string) string { return st.Render(s) }
}

func (p *Printer) width() int {
	if p.Width <= 0 {
		return 100
	}
	return p.Width
}

// KeyValues writes aligned "key  value" rows. Keys are padded by display
// width so wide characters line up.
func (p *Printer) KeyValues(w io.Writer, rows [][2]string) error {
	keyWidth := 0
	for _, row := range rows {
		keyWidth = max(keyWidth, runewidth.StringWidth(row[0]))
	}
	key := p.style("7", true)
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s  %s\n", key(runewidth.FillRight(row[0], keyWidth)), row[1]); err != nil {
			return err
		}
	}
	return nil
}

// Result writes one job result as key/value rows.
func (p *Printer) Result(w io.Writer, r *driver.Result) error {
	var rows [][2]string
	add := func(k, v string) {
		if v != "" {
			rows = append(rows, [2]string{k, v})
		}
	}
	add("name", r.Name)
	add("operand", r.Operand)
	add("dtype", r.DType)
	add("udtype", r.UDType)
	add("stages", strings.Join(r.Stages, " -> "))
	if r.Value != nil {
		add("value", FormatValue(r.Value))
	}
	add("rendered", r.Rendered)
	add("error", r.Error)
	add("code", r.Code)
	add("status", p.status(r))
	return p.KeyValues(w, rows)
}

func (p *Printer) status(r *driver.Result) string {
	switch {
	case r.OK && r.Code != "":
		return p.style("2", false)("expected " + r.Code)
	case r.OK:
		return p.style("2", false)("ok")
	default:
		return p.style("1", true)("FAIL")
	}
}

// Batch writes one row per job: status, name, dtype and the rendered value
// or the error.
func (p *Printer) Batch(w io.Writer, b *driver.BatchResult) error {
	title := p.style("7", true)
	const statusWidth = 14
	nameWidth := 24
	dtypeWidth := 20
	restWidth := max(p.width()-statusWidth-nameWidth-dtypeWidth-6, 16)

	for _, f := range b.Files {
		if p.Quiet && !fileFailed(f) {
			continue
		}
		if _, err := fmt.Fprintln(w, title(f.Path)); err != nil {
			return err
		}
		if f.Error != "" {
			if _, err := fmt.Fprintf(w, "  %s %s\n", p.style("1", true)(runewidth.FillRight("LOAD FAILED", statusWidth)), f.Error); err != nil {
				return err
			}
			continue
		}
		for i := range f.Jobs {
			j := &f.Jobs[i]
			if p.Quiet && j.OK {
				continue
			}
			detail := j.Rendered
			if j.Error != "" {
				detail = j.Error
			}
			status := p.status(j)
			pad := statusWidth - lipgloss.Width(status)
			line := fmt.Sprintf("  %s%s %s %s %s",
				status, strings.Repeat(" ", max(pad, 0)),
				runewidth.FillRight(truncate(j.Name, nameWidth), nameWidth),
				runewidth.FillRight(truncate(j.DType, dtypeWidth), dtypeWidth),
				truncate(detail, restWidth))
			if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
				return err
			}
		}
	}
	failed := b.Failed()
	summary := p.style("2", false)("all jobs passed")
	if failed > 0 {
		summary = p.style("1", true)(strconv.Itoa(failed) + " failed")
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

func fileFailed(f driver.FileResult) bool {
	if f.Error != "" {
		return true
	}
	for _, j := range f.Jobs {
		if !j.OK {
			return true
		}
	}
	return false
}

// FormatValue prints a native container value: text quoted, bytes as b"..."
// and sequences in brackets.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case []byte:
		return nd.BytesLiteral(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
