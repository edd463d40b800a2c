package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes rendered components to an output stream
type Printer struct {
	out   io.Writer
	width int
	color bool
}

// NewPrinter creates a Printer. A nil writer means os.Stdout; colored tables
// are only used when that stream is a terminal.
func NewPrinter(w io.Writer) *Printer {
	color := false
	if w == nil {
		w = os.Stdout
		color = IsTerminal()
	} else if f, ok := w.(*os.File); ok && f == os.Stdout {
		color = IsTerminal()
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
		color: color,
	}
}

// Width returns the rendering width
func (p *Printer) Width() int {
	return p.width
}

// Writer returns the underlying output
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(h *Header) {
	p.Println(h.SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Detail) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints a failure result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintRooms prints the rooms table
func (p *Printer) PrintRooms(rows []RoomRow) {
	_ = NewRoomsTable(rows, p.color).Write(p.out)
}
