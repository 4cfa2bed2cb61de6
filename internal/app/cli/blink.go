package cli

import (
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

const (
	blinkEmpty = "○"
	blinkFull  = "●"

	blinkFPS              = 10.0
	blinkAngularFrequency = 6.0
	blinkDampingRatio     = 0.6

	blinkFrameThreshold = 0.3
)

// Blink pulses the shell's sampling indicator using spring physics instead
// of a flat on/off toggle, the way a heartbeat LED eases in and out.
type Blink struct {
	spring   harmonica.Spring
	position float64
	velocity float64
	active   bool
}

// NewBlink returns an inactive Blink.
func NewBlink() *Blink {
	return &Blink{spring: harmonica.NewSpring(harmonica.FPS(blinkFPS), blinkAngularFrequency, blinkDampingRatio)}
}

// Start arms the pulse; Update will ease position toward full.
func (b *Blink) Start() { b.active = true }

// Stop disarms the pulse; Update will ease position back toward empty.
func (b *Blink) Stop() { b.active = false }

// Update advances the spring one tick toward the active/inactive target.
func (b *Blink) Update() {
	target := 0.0
	if b.active {
		target = 1.0
	}
	b.position, b.velocity = b.spring.Update(b.position, b.velocity, target)
}

// Render returns the styled frame glyph.
func (b *Blink) Render(style lipgloss.Style) string {
	if b.position < blinkFrameThreshold {
		return style.Render(blinkEmpty)
	}
	return style.Render(blinkFull)
}
