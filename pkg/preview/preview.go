// Package preview shows rendered frames in the terminal using true color
// half-block cells, two image pixels per character cell.
package preview

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// halfBlock draws the upper pixel in the foreground color and the lower pixel in the background
const halfBlock = '▀'

// Preview owns a terminal screen and its event stream. The terminal runs in
// raw mode, so Ctrl-C arrives as a key event rather than an interrupt signal;
// Escape, q and Ctrl-C close the quit channel and call the cancel hook.
type Preview struct {
	screen tcell.Screen
	cancel context.CancelFunc

	events   chan tcell.Event
	quit     chan struct{}
	quitOnce sync.Once
	pumpDone chan struct{}
}

// New opens and initializes the terminal screen. cancel is called when the
// user asks to quit and may be nil.
func New(cancel context.CancelFunc) (*Preview, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	return NewWithScreen(screen, cancel), nil
}

// NewWithScreen wraps an already initialized screen and starts reading its events
func NewWithScreen(screen tcell.Screen, cancel context.CancelFunc) *Preview {
	p := &Preview{
		screen:   screen,
		cancel:   cancel,
		events:   make(chan tcell.Event, 16),
		quit:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
	go p.pump()
	return p
}

// pump reads screen events until the screen is finalized. Quit keys are
// handled here so they work while nobody is waiting on the preview; other
// events are dropped when the buffer is full.
func (p *Preview) pump() {
	defer close(p.pumpDone)
	defer close(p.events)

	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return
		}
		if key, ok := ev.(*tcell.EventKey); ok && isQuitKey(key) {
			p.requestQuit()
			continue
		}
		select {
		case p.events <- ev:
		default:
		}
	}
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}

// requestQuit closes the quit channel before cancelling, so Wait can tell a
// user quit apart from an outside cancellation.
func (p *Preview) requestQuit() {
	p.quitOnce.Do(func() {
		close(p.quit)
		if p.cancel != nil {
			p.cancel()
		}
	})
}

// Quit is closed once the user presses Escape, q or Ctrl-C
func (p *Preview) Quit() <-chan struct{} {
	return p.quit
}

// Update redraws the screen with frame and a one-line caption underneath
func (p *Preview) Update(frame *renderer.Frame, caption string) {
	p.screen.Clear()
	Draw(p.screen, frame, caption)
	p.screen.Show()
}

// Wait blocks until the user presses Enter, Escape, q or Ctrl-C, or ctx ends.
// A user quit returns nil even though it also cancels the render context.
// The frame is redrawn on terminal resize.
func (p *Preview) Wait(ctx context.Context, frame *renderer.Frame, caption string) error {
	for {
		select {
		case <-p.quit:
			return nil
		case <-ctx.Done():
			select {
			case <-p.quit:
				return nil
			default:
			}
			return ctx.Err()
		case ev, ok := <-p.events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEnter {
					return nil
				}
			case *tcell.EventResize:
				p.screen.Sync()
				p.Update(frame, caption)
			}
		}
	}
}

// Close restores the terminal and waits for the event reader to stop
func (p *Preview) Close() {
	p.screen.Fini()
	<-p.pumpDone
}

// Draw paints frame onto screen, shrunk with nearest-neighbour sampling to
// fit above the caption row. Frames are never enlarged.
func Draw(screen tcell.Screen, frame *renderer.Frame, caption string) {
	cols, rows := screen.Size()
	imageRows := rows - 1
	if cols <= 0 || imageRows <= 0 || frame.Width == 0 || frame.Height == 0 {
		return
	}

	scale := math.Max(
		float64(frame.Width)/float64(cols),
		float64(frame.Height)/float64(2*imageRows),
	)
	if scale < 1 {
		scale = 1
	}

	outCols := int(float64(frame.Width) / scale)
	outRows := int(math.Ceil(float64(frame.Height) / scale / 2))

	for cy := 0; cy < outRows && cy < imageRows; cy++ {
		upperY := int(float64(2*cy) * scale)
		lowerY := int(float64(2*cy+1) * scale)

		for cx := 0; cx < outCols && cx < cols; cx++ {
			x := int(float64(cx) * scale)

			style := tcell.StyleDefault.Foreground(cellColor(frame.At(x, upperY)))
			if lowerY < frame.Height {
				style = style.Background(cellColor(frame.At(x, lowerY)))
			} else {
				style = style.Background(tcell.ColorBlack)
			}
			screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}

	captionStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, r := range []rune(caption) {
		if i >= cols {
			break
		}
		screen.SetContent(i, rows-1, r, nil, captionStyle)
	}
}

func cellColor(p renderer.Pixel) tcell.Color {
	return tcell.NewRGBColor(int32(p.R), int32(p.G), int32(p.B))
}
