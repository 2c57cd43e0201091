package preview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// gradientFrame builds a frame whose pixel (x, y) is (x, y, 7)
func gradientFrame(width, height int) *renderer.Frame {
	frame := &renderer.Frame{Width: width, Height: height, Pixels: make([]renderer.Pixel, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			frame.Pixels[y*width+x] = renderer.Pixel{R: uint8(x), G: uint8(y), B: 7}
		}
	}
	return frame
}

func newTestScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init simulation screen: %v", err)
	}
	screen.SetSize(width, height)
	return screen
}

func TestDraw_HalfBlocks(t *testing.T) {
	screen := newTestScreen(t, 10, 5)
	defer screen.Fini()

	Draw(screen, gradientFrame(10, 8), "done")

	tests := []struct {
		cx, cy int
		upper  renderer.Pixel
		lower  renderer.Pixel
	}{
		{0, 0, renderer.Pixel{R: 0, G: 0, B: 7}, renderer.Pixel{R: 0, G: 1, B: 7}},
		{3, 1, renderer.Pixel{R: 3, G: 2, B: 7}, renderer.Pixel{R: 3, G: 3, B: 7}},
		{9, 3, renderer.Pixel{R: 9, G: 6, B: 7}, renderer.Pixel{R: 9, G: 7, B: 7}},
	}

	for _, tt := range tests {
		r, _, style, _ := screen.GetContent(tt.cx, tt.cy)
		if r != halfBlock {
			t.Errorf("Cell (%d,%d): expected half block, got %q", tt.cx, tt.cy, r)
		}
		fg, bg, _ := style.Decompose()
		if fg != cellColor(tt.upper) {
			t.Errorf("Cell (%d,%d): foreground should be upper pixel %v", tt.cx, tt.cy, tt.upper)
		}
		if bg != cellColor(tt.lower) {
			t.Errorf("Cell (%d,%d): background should be lower pixel %v", tt.cx, tt.cy, tt.lower)
		}
	}

	caption := ""
	for x := 0; x < 4; x++ {
		r, _, _, _ := screen.GetContent(x, 4)
		caption += string(r)
	}
	if caption != "done" {
		t.Errorf("Expected caption on last row, got %q", caption)
	}
}

func TestDraw_ShrinksLargeFrames(t *testing.T) {
	screen := newTestScreen(t, 10, 6)
	defer screen.Fini()

	// 40x20 into 10 columns x 5 image rows (10 pixel rows) scales by 4
	Draw(screen, gradientFrame(40, 20), "")

	r, _, style, _ := screen.GetContent(2, 1)
	if r != halfBlock {
		t.Fatalf("Expected half block, got %q", r)
	}
	fg, bg, _ := style.Decompose()
	if fg != cellColor(renderer.Pixel{R: 8, G: 8, B: 7}) {
		t.Error("Foreground should sample pixel (8, 8)")
	}
	if bg != cellColor(renderer.Pixel{R: 8, G: 12, B: 7}) {
		t.Error("Background should sample pixel (8, 12)")
	}

	// Column 10 and beyond would be off screen; the last drawn image row is 2
	if r, _, _, _ := screen.GetContent(0, 3); r == halfBlock {
		t.Error("Rows past the scaled image should stay empty")
	}
}

func TestDraw_OddHeightPadsBlack(t *testing.T) {
	screen := newTestScreen(t, 4, 4)
	defer screen.Fini()

	Draw(screen, gradientFrame(2, 3), "")

	_, _, style, _ := screen.GetContent(0, 1)
	_, bg, _ := style.Decompose()
	if bg != tcell.ColorBlack {
		t.Errorf("Missing lower pixel should be black, got %v", bg)
	}
}

func TestPreview_WaitForKey(t *testing.T) {
	tests := []struct {
		name       string
		key        tcell.Key
		r          rune
		wantCancel bool
	}{
		{"q", tcell.KeyRune, 'q', true},
		{"escape", tcell.KeyEscape, 0, true},
		{"ctrl-c", tcell.KeyCtrlC, 0, true},
		{"enter", tcell.KeyEnter, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			screen := newTestScreen(t, 10, 5)
			p := NewWithScreen(screen, cancel)
			defer p.Close()

			frame := gradientFrame(10, 8)
			p.Update(frame, "saved")
			screen.InjectKey(tt.key, tt.r, tcell.ModNone)

			if err := p.Wait(ctx, frame, "saved"); err != nil {
				t.Errorf("Wait should return nil, got %v", err)
			}
			if cancelled := errors.Is(ctx.Err(), context.Canceled); cancelled != tt.wantCancel {
				t.Errorf("Context cancelled = %t, expected %t", cancelled, tt.wantCancel)
			}
		})
	}
}

func TestPreview_WaitCancelled(t *testing.T) {
	screen := newTestScreen(t, 10, 5)
	p := NewWithScreen(screen, nil)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Wait(ctx, gradientFrame(2, 2), ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestPreview_EventsWithoutReader(t *testing.T) {
	screen := newTestScreen(t, 10, 5)
	p := NewWithScreen(screen, nil)

	injected := make(chan struct{})
	go func() {
		defer close(injected)
		for i := 0; i < 40; i++ {
			screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
		}
	}()

	select {
	case <-injected:
	case <-time.After(5 * time.Second):
		t.Fatal("Key injection blocked with nobody waiting on the preview")
	}

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not stop the event reader")
	}

	// The reader closes its channel on exit
	for range p.events {
	}
}

func TestPreview_CtrlCCancelsRender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	screen := newTestScreen(t, 20, 8)
	p := NewWithScreen(screen, cancel)
	defer p.Close()

	s := scene.NewGroundScene()
	config := s.SamplingConfig
	config.Width = 200
	config.Height = 100
	config.SamplesPerPixel = 2000
	config.NumWorkers = 2

	progressive := renderer.NewProgressiveRaytracer(renderer.NewRaytracer(s, config, nil), renderer.ProgressiveConfig{
		InitialSamples: 1,
		MaxPasses:      100,
	})
	passChan, errChan := progressive.RenderProgressive(ctx)

	first, ok := <-passChan
	if !ok {
		t.Fatalf("Render ended before the first pass: %v", <-errChan)
	}
	p.Update(first.Frame, "pass 1")
	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModNone)

	passes := 1
	for range passChan {
		passes++
	}
	if err := <-errChan; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if passes >= 100 {
		t.Error("Render should stop before the last pass")
	}

	select {
	case <-p.Quit():
	default:
		t.Error("Quit channel should be closed after Ctrl-C")
	}
}
