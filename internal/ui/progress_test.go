package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Transitions(t *testing.T) {
	p := NewProgress([]string{"One", "Two", "Three", "Four"}).SetWidth(80)
	assert.Zero(t, p.Percent())
	assert.Zero(t, p.current())

	p.Start(1)
	assert.Equal(t, StepRunning, p.Steps[0].Status)
	assert.Equal(t, 1, p.current())

	p.Complete(1, "10ms")
	p.Complete(2, "")
	assert.InDelta(t, 0.5, p.Percent(), 1e-9)

	p.Fail(3, "boom")
	assert.Equal(t, StepFailed, p.Steps[2].Status)
	assert.Equal(t, 3, p.current())
	assert.InDelta(t, 0.5, p.Percent(), 1e-9)
}

func TestProgress_OutOfRangeIgnored(t *testing.T) {
	p := NewProgress([]string{"Only"})
	p.Start(0)
	p.Complete(2, "")
	assert.Equal(t, StepPending, p.Steps[0].Status)
	assert.Empty(t, p.RenderStep(5))
}

func TestProgress_Render(t *testing.T) {
	p := NewProgress([]string{"Open session", "Sign in"}).SetWidth(80)
	p.Complete(1, "12ms")
	p.Fail(2, "")

	out := p.Render()
	assert.Contains(t, out, "[1/2] Open session")
	assert.Contains(t, out, "(12ms)")
	assert.Contains(t, out, StepMarkerComplete)
	assert.Contains(t, out, FailureMarker)
	assert.Contains(t, out, "50%")

	p.ShowBar = false
	assert.NotContains(t, p.String(), "%")
}

func TestProgress_Empty(t *testing.T) {
	p := NewProgress(nil)
	assert.Zero(t, p.Percent())
}
