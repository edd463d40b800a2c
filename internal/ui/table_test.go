package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestRoomsTable_Render(t *testing.T) {
	out := NewRoomsTable([]RoomRow{
		{ID: "1234", Name: "Living room", Temperature: ptr(20.5)},
		{ID: "5678", Name: "Attic"},
	}, false).Render()

	assert.Contains(t, out, "ROOM ID")
	assert.Contains(t, out, "TEMPERATURE")
	assert.Contains(t, out, "Living room")
	assert.Contains(t, out, "20.5°C")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, strings.ToLower(out), "2 rooms")
	assert.True(t, strings.Index(out, "1234") < strings.Index(out, "5678"))
}

func TestRoomsTable_Empty(t *testing.T) {
	assert.Equal(t, "No thermostat rooms found", NewRoomsTable(nil, false).Render())
}

func TestPrinter_Writes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRooms([]RoomRow{{ID: "1", Name: "Office", Temperature: ptr(19)}})
	p.PrintSuccess("Done", Detail{"Rooms", "1"})
	p.PrintError("Oops", assert.AnError, nil)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "Office")
	assert.Contains(t, out, "19.0°C")
	assert.Contains(t, out, "SUCCESS")
	assert.Contains(t, out, "FAILED")
}
