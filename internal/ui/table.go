package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Temperatures below ColdBelow render in ColdColor, above WarmAbove in WarmColor
const (
	ColdBelow = 18.0
	WarmAbove = 22.0
)

// RoomRow is one line of the rooms table
type RoomRow struct {
	ID          string
	Name        string
	Temperature *float64
}

// RoomsTable renders rooms as a rounded go-pretty table
type RoomsTable struct {
	rows  []RoomRow
	color bool
}

// NewRoomsTable creates a table. Colors are only applied when color is true.
func NewRoomsTable(rows []RoomRow, color bool) *RoomsTable {
	return &RoomsTable{rows: rows, color: color}
}

func (t *RoomsTable) writer() table.Writer {
	w := table.NewWriter()
	w.SetStyle(table.StyleRounded)
	if !t.color {
		w.Style().Color = table.ColorOptions{}
	}

	w.AppendHeader(table.Row{t.heading("ROOM ID"), t.heading("NAME"), t.heading("TEMPERATURE")})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})

	for _, r := range t.rows {
		w.AppendRow(table.Row{r.ID, r.Name, t.temperature(r.Temperature)})
	}
	w.AppendFooter(table.Row{"", "", fmt.Sprintf("%d rooms", len(t.rows))})
	return w
}

func (t *RoomsTable) heading(s string) string {
	if !t.color {
		return s
	}
	return text.FgHiCyan.Sprint(s)
}

func (t *RoomsTable) temperature(v *float64) string {
	if v == nil {
		return "n/a"
	}
	s := fmt.Sprintf("%.1f°C", *v)
	if !t.color {
		return s
	}
	switch {
	case *v < ColdBelow:
		return lipgloss.NewStyle().Foreground(ColdColor).Render(s)
	case *v > WarmAbove:
		return lipgloss.NewStyle().Foreground(WarmColor).Render(s)
	}
	return s
}

// Render returns the table as a string
func (t *RoomsTable) Render() string {
	if len(t.rows) == 0 {
		return t.empty()
	}
	return t.writer().Render()
}

// Write renders the table to w
func (t *RoomsTable) Write(w io.Writer) error {
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func (t *RoomsTable) empty() string {
	if !t.color {
		return "No thermostat rooms found"
	}
	return text.FgYellow.Sprint("No thermostat rooms found")
}
