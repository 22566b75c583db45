// Package playback walks an immutable trace with a movable cursor. The cursor
// lives here, never in the engine, so a trace can be scrubbed freely.
package playback

import (
	"time"

	"shaviz/v2/engine"
)

const (
	DefaultSpeed = 40 * time.Millisecond
	MinSpeed     = time.Millisecond
	MaxSpeed     = 2 * time.Second
)

// Player holds a trace and the index of the step being shown.
// It is not safe for concurrent use.
type Player struct {
	steps   []engine.Step
	index   int
	playing bool
	speed   time.Duration
}

func New(steps []engine.Step) *Player {
	return &Player{steps: steps, speed: DefaultSpeed}
}

// Load replaces the trace and rewinds, as recomputing a hash does.
func (p *Player) Load(steps []engine.Step) {
	p.steps = steps
	p.index = 0
	p.playing = false
}

func (p *Player) Len() int   { return len(p.steps) }
func (p *Player) Index() int { return p.index }

func (p *Player) Current() (engine.Step, bool) {
	if p.index < 0 || p.index >= len(p.steps) {
		return engine.Step{}, false
	}
	return p.steps[p.index], true
}

// Round is the round of the current step, 0 for an empty trace.
func (p *Player) Round() int {
	s, ok := p.Current()
	if !ok {
		return 0
	}
	return s.Round
}

// SubStep is the position of the current step inside its round, or -1 for
// steps outside the compression loop.
func (p *Player) SubStep() int {
	s, ok := p.Current()
	if !ok || !s.InRound() {
		return -1
	}
	for i, op := range engine.RoundOperations {
		if op == s.Operation {
			return i
		}
	}
	return -1
}

func (p *Player) AtEnd() bool { return p.index >= len(p.steps)-1 }

func (p *Player) StepForward() bool {
	if p.AtEnd() {
		return false
	}
	p.index++
	return true
}

func (p *Player) StepBack() bool {
	if p.index == 0 {
		return false
	}
	p.index--
	return true
}

func sameGroup(a, b engine.Step) bool {
	return a.Block == b.Block && a.Round == b.Round
}

// groupStart returns the first index of the round (or setup phase) containing i.
func (p *Player) groupStart(i int) int {
	for i > 0 && sameGroup(p.steps[i-1], p.steps[i]) {
		i--
	}
	return i
}

// RoundForward jumps to the first step of the next round, or to the last
// step when there is none.
func (p *Player) RoundForward() {
	cur, ok := p.Current()
	if !ok {
		return
	}
	for i := p.index + 1; i < len(p.steps); i++ {
		if !sameGroup(p.steps[i], cur) {
			p.index = i
			return
		}
	}
	p.index = len(p.steps) - 1
}

// RoundBack jumps to the first step of the previous round, or to 0.
func (p *Player) RoundBack() {
	if len(p.steps) == 0 {
		return
	}
	start := p.groupStart(p.index)
	if start == 0 {
		p.index = 0
		return
	}
	p.index = p.groupStart(start - 1)
}

// Seek moves to i, clamped to the trace.
func (p *Player) Seek(i int) {
	switch {
	case len(p.steps) == 0 || i < 0:
		p.index = 0
	case i >= len(p.steps):
		p.index = len(p.steps) - 1
	default:
		p.index = i
	}
}

func (p *Player) Reset() {
	p.index = 0
	p.playing = false
}

func (p *Player) Play()         { p.playing = len(p.steps) > 0 && !p.AtEnd() }
func (p *Player) Pause()        { p.playing = false }
func (p *Player) Playing() bool { return p.playing }

func (p *Player) Toggle() {
	if p.playing {
		p.Pause()
		return
	}
	p.Play()
}

func (p *Player) Speed() time.Duration { return p.speed }

// SetSpeed sets the delay between steps, clamped to [MinSpeed, MaxSpeed].
func (p *Player) SetSpeed(d time.Duration) {
	p.speed = min(max(d, MinSpeed), MaxSpeed)
}

// Tick advances one step while playing and pauses at the last step.
func (p *Player) Tick() bool {
	if !p.playing {
		return false
	}
	moved := p.StepForward()
	if p.AtEnd() {
		p.playing = false
	}
	return moved
}
