package ui

import (
	"strings"
)

// Sparkline renders a text-based chart of recent samples using Unicode
// block characters. Used for the batch-size strip on the watch dashboard.
type Sparkline struct {
	samples []float64 // ring buffer
	width   int       // display width (number of bars)
	head    int       // next write position
	count   int       // total samples added
	max     float64   // scale ceiling
}

// SparklineChars are the Unicode block characters for rendering sparklines.
// 8 levels of height from empty to full.
var SparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// NewSparkline creates a new sparkline with the given display width.
func NewSparkline(width int) *Sparkline {
	if width <= 0 {
		width = 60
	}
	return &Sparkline{
		samples: make([]float64, width),
		width:   width,
	}
}

// Add adds a new sample to the sparkline.
func (s *Sparkline) Add(value float64) {
	s.samples[s.head] = value
	s.head = (s.head + 1) % s.width
	s.count++

	if value > s.max {
		s.max = value
	}
	// Rescan once per buffer generation so the scale can come back down
	// after a spike ages out.
	if s.count%s.width == 0 {
		s.rescale()
	}
}

// rescale recomputes the ceiling from the live buffer, keeping it at
// least 1 so charFor never divides by zero.
func (s *Sparkline) rescale() {
	s.max = 1
	for _, v := range s.samples {
		if v > s.max {
			s.max = v
		}
	}
}

// charFor maps a value onto the block character scale.
func (s *Sparkline) charFor(value float64) rune {
	if s.max <= 0 {
		return SparklineChars[0]
	}
	idx := int(value / s.max * float64(len(SparklineChars)-1))
	switch {
	case idx < 0:
		return SparklineChars[0]
	case idx >= len(SparklineChars):
		return SparklineChars[len(SparklineChars)-1]
	}
	return SparklineChars[idx]
}

// window copies out the samples oldest to newest.
func (s *Sparkline) window() []float64 {
	if s.count < s.width {
		return s.samples[:s.count]
	}
	out := make([]float64, s.width)
	for i := range out {
		out[i] = s.samples[(s.head+i)%s.width]
	}
	return out
}

// Render returns the sparkline as a string of block characters.
func (s *Sparkline) Render() string {
	return s.RenderWithWidth(s.width)
}

// RenderWithWidth renders the most recent samples at a specific width,
// for when the terminal is narrower than the buffer.
func (s *Sparkline) RenderWithWidth(width int) string {
	if width <= 0 || width > s.width {
		width = s.width
	}
	if s.count == 0 {
		return strings.Repeat(string(SparklineChars[0]), width)
	}
	if s.max <= 0 {
		s.rescale()
	}

	win := s.window()
	if len(win) > width {
		win = win[len(win)-width:]
	}

	var sb strings.Builder
	sb.Grow(width * 3) // UTF-8 block chars are 3 bytes
	for _, v := range win {
		sb.WriteRune(s.charFor(v))
	}
	for i := len(win); i < width; i++ {
		sb.WriteRune(' ')
	}
	return sb.String()
}

// Clear resets the sparkline.
func (s *Sparkline) Clear() {
	s.samples = make([]float64, s.width)
	s.head = 0
	s.count = 0
	s.max = 0
}

// Count returns the number of samples added.
func (s *Sparkline) Count() int {
	return s.count
}

// Max returns the current maximum value.
func (s *Sparkline) Max() float64 {
	return s.max
}
