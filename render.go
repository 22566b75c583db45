// render.go
package main

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"shaviz/v2/engine"
	"shaviz/v2/playback"
	"shaviz/v2/report"
)

var (
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleActive = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleBadge  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorFuchsia).Bold(true)

	heatCold, _ = colorful.Hex("#ffd75f")
	heatHot, _  = colorful.Hex("#ff3030")
)

// heatColor fades from yellow to red as more bits of a register flip.
func heatColor(flipped int) tcell.Color {
	t := float64(flipped) / 32
	c := heatCold.BlendLab(heatHot, t).Clamped()
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// traceView draws one step of a trace onto the screen.
type traceView struct {
	message   string
	cfg       engine.Config
	player    *playback.Player
	showGates bool
}

func (v *traceView) draw(s tcell.Screen, w, h int) {
	step, ok := v.player.Current()
	if !ok {
		drawText(s, 1, 1, styleText, "empty trace")
		return
	}

	v.drawHeader(s, step)
	y := v.drawRegisters(s, 1, 3, step)

	left := 1
	right := min(w/2, 72)
	v.drawPseudocode(s, left, y+1, right-2, h-y-4, step)
	v.drawDetails(s, right, y+1, w-right-1, h-y-4, step)

	status := "space play/pause  ←/→ step  n/p round  +/- speed  g gates  r reset  q quit"
	drawText(s, 1, h-1, styleDim, status)
}

func (v *traceView) drawHeader(s tcell.Screen, step engine.Step) {
	mode := "paused"
	if v.player.Playing() {
		mode = "playing"
	}
	round := "-"
	if step.InRound() {
		round = fmt.Sprintf("%d/%d", step.Round, v.cfg.Rounds())
	}
	title := fmt.Sprintf("SHA-256 %q  step %d/%d  block %d  round %s  %s  [%s %v]",
		truncate(v.message, 24), v.player.Index()+1, v.player.Len(), step.Block, round,
		step.Operation, mode, v.player.Speed())
	x := drawText(s, 1, 0, styleTitle, title)
	if engine.IsParallelRotation(step) {
		drawText(s, x+2, 0, styleBadge, " PARALLEL ROTATION ")
	}
	drawText(s, 1, 1, styleText, step.Description)
}

// drawRegisters shows each register in hex and binary; bits that changed
// in this step are coloured by how much of the register flipped.
func (v *traceView) drawRegisters(s tcell.Screen, x, y int, step engine.Step) int {
	before, after := step.StateBefore.Words(), step.StateAfter.Words()
	for i, name := range engine.RegisterNames {
		diff := before[i] ^ after[i]
		style := styleText
		if diff != 0 {
			style = style.Bold(true)
		}
		cx := drawText(s, x, y+i, style, fmt.Sprintf("%s  %s  ", name, engine.FormatHex(after[i])))
		hot := tcell.StyleDefault.Foreground(heatColor(bits.OnesCount32(diff))).Bold(true)
		for j, r := range engine.FormatBinary(after[i]) {
			st := styleDim
			if diff&(1<<(31-j)) != 0 {
				st = hot
			}
			s.SetContent(cx+j, y+i, r, nil, st)
		}
	}
	return y + engine.RegisterCount
}

func (v *traceView) drawPseudocode(s tcell.Screen, x, y, w, h int, step engine.Step) {
	if h <= 0 || w <= 0 {
		return
	}
	total := engine.PseudocodeLineCount()
	// keep the current line in view
	first := 1
	if step.CodeLine > h/2 {
		first = min(step.CodeLine-h/2, max(total-h+1, 1))
	}
	for row := 0; row < h && first+row <= total; row++ {
		n := first + row
		style := styleText
		if n == step.CodeLine {
			style = styleActive
		}
		line := fmt.Sprintf("%2d %s", n, engine.PseudocodeLine(n))
		drawText(s, x, y+row, style, runewidth.Truncate(line, w, "…"))
	}
}

func (v *traceView) drawDetails(s tcell.Screen, x, y, w, h int, step engine.Step) {
	if h <= 0 || w <= 0 {
		return
	}
	row := 0
	put := func(style tcell.Style, text string) {
		if row < h {
			drawText(s, x, y+row, style, runewidth.Truncate(text, w, "…"))
			row++
		}
	}

	put(styleTitle, "values")
	width := 0
	for _, val := range step.Values {
		width = max(width, runewidth.StringWidth(val.Label))
	}
	for _, val := range step.Values {
		put(styleText, fmt.Sprintf("%s  %s", runewidth.FillRight(val.Label, width), val))
	}

	if !v.showGates || len(step.Gates) == 0 {
		return
	}
	row++
	put(styleTitle, fmt.Sprintf("gates (%d)", len(step.Gates)))
	for _, g := range step.Gates {
		put(styleDim, report.FormatGate(g))
	}
}

func truncate(s string, n int) string {
	return runewidth.Truncate(s, n, "…")
}

// handleKey applies a key press to the player; it reports false on quit.
func (v *traceView) handleKey(ev *tcell.EventKey) bool {
	p := v.player
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRight:
		p.Pause()
		p.StepForward()
	case tcell.KeyLeft:
		p.Pause()
		p.StepBack()
	case tcell.KeyUp:
		p.Pause()
		p.RoundBack()
	case tcell.KeyDown:
		p.Pause()
		p.RoundForward()
	case tcell.KeyHome:
		p.Seek(0)
	case tcell.KeyEnd:
		p.Seek(p.Len() - 1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case ' ':
			p.Toggle()
		case 'l':
			p.Pause()
			p.StepForward()
		case 'h':
			p.Pause()
			p.StepBack()
		case 'n':
			p.Pause()
			p.RoundForward()
		case 'p':
			p.Pause()
			p.RoundBack()
		case 'r':
			p.Reset()
		case 'g':
			v.showGates = !v.showGates
		case '+', '=':
			p.SetSpeed(p.Speed() / 2)
		case '-', '_':
			p.SetSpeed(p.Speed() * 2)
		}
	}
	return true
}

func runPlayer(message string, cfg engine.Config, steps []engine.Step) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen init failed: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("screen start failed: %w", err)
	}
	defer s.Fini()

	view := &traceView{message: message, cfg: cfg, player: playback.New(steps), showGates: true}
	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)

	// Input handler
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	speed := view.player.Speed()
	ticker := time.NewTicker(speed)
	defer ticker.Stop()

	redraw := func() {
		s.Clear()
		w, h := s.Size()
		if w > 40 && h > 16 {
			view.draw(s, w, h)
		} else {
			drawText(s, 0, 0, styleText, "terminal too small")
		}
		s.Show()
	}
	redraw()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !view.handleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				s.Sync()
			}
		case <-ticker.C:
			if !view.player.Tick() {
				continue
			}
		}
		if d := view.player.Speed(); d != speed {
			speed = d
			ticker.Reset(speed)
		}
		redraw()
	}
}

// drawText writes str at (x, y) and returns the column after it.
func drawText(s tcell.Screen, x, y int, style tcell.Style, str string) int {
	for _, r := range str {
		s.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	return x
}
