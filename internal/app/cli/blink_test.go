package cli

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func Test_Blink_StartedPulseEventuallyRendersFull(t *testing.T) {
	b := NewBlink()
	b.Start()

	var frame string
	for i := 0; i < 50; i++ {
		b.Update()
		frame = b.Render(lipgloss.NewStyle())
	}

	assert.Equal(t, blinkFull, frame)
}

func Test_Blink_InactiveRendersEmpty(t *testing.T) {
	b := NewBlink()
	frame := b.Render(lipgloss.NewStyle())
	assert.Equal(t, blinkEmpty, frame)
}
