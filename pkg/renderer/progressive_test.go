package renderer

import (
	"context"
	"errors"
	"testing"
)

func TestProgressiveRaytracer_getSamplesForPass(t *testing.T) {
	tests := []struct {
		name        string
		samples     int
		initial     int
		maxPasses   int
		wantPasses  int
		wantTargets []int
	}{
		{"single pass takes everything", 10, 1, 1, 1, []int{10}},
		{"even split", 9, 1, 5, 5, []int{1, 3, 5, 7, 9}},
		{"remainder lands on last pass", 10, 1, 4, 4, []int{1, 4, 7, 10}},
		{"passes clamped to available samples", 3, 1, 10, 3, []int{1, 2, 3}},
		{"initial clamped to total", 4, 10, 3, 1, []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := smallConfig(tt.samples, 1)
			rt := NewRaytracer(createGroundScene(2.0), config, nil)
			pr := NewProgressiveRaytracer(rt, ProgressiveConfig{InitialSamples: tt.initial, MaxPasses: tt.maxPasses})

			if pr.Passes() != tt.wantPasses {
				t.Fatalf("Expected %d passes, got %d", tt.wantPasses, pr.Passes())
			}
			for i, want := range tt.wantTargets {
				if got := pr.getSamplesForPass(i + 1); got != want {
					t.Errorf("Pass %d: expected %d samples, got %d", i+1, want, got)
				}
			}
		})
	}
}

func TestProgressiveRaytracer_RenderProgressive(t *testing.T) {
	config := smallConfig(6, 11)
	rt := NewRaytracer(createGroundScene(2.0), config, nil)
	pr := NewProgressiveRaytracer(rt, ProgressiveConfig{InitialSamples: 1, MaxPasses: 3})

	passChan, errChan := pr.RenderProgressive(context.Background())

	var results []PassResult
	for result := range passChan {
		results = append(results, result)
	}
	if err := <-errChan; err != nil {
		t.Fatalf("Progressive render failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 passes, got %d", len(results))
	}

	wantAverage := []float64{1, 3, 6}
	for i, result := range results {
		if result.PassNumber != i+1 {
			t.Errorf("Result %d has pass number %d", i, result.PassNumber)
		}
		if result.IsLast != (i == 2) {
			t.Errorf("Pass %d IsLast = %t", result.PassNumber, result.IsLast)
		}
		if result.Stats.AverageSamples != wantAverage[i] {
			t.Errorf("Pass %d: expected %.0f samples/pixel, got %f", result.PassNumber, wantAverage[i], result.Stats.AverageSamples)
		}
		if result.Frame == nil || len(result.Frame.Pixels) != config.Width*config.Height {
			t.Errorf("Pass %d: missing or misshapen frame", result.PassNumber)
		}
	}
}

func TestProgressiveRaytracer_Deterministic(t *testing.T) {
	render := func(workers int) *Frame {
		config := smallConfig(4, 5)
		config.NumWorkers = workers
		pr := NewProgressiveRaytracer(NewRaytracer(createGroundScene(2.0), config, nil), DefaultProgressiveConfig())

		var last *Frame
		for pass := 1; pass <= pr.Passes(); pass++ {
			frame, _, err := pr.RenderPass(context.Background(), pass)
			if err != nil {
				t.Fatalf("Pass %d failed: %v", pass, err)
			}
			last = frame
		}
		return last
	}

	a := render(1)
	b := render(4)
	for i := range a.Pixels {
		if a.Pixels[i] != b.Pixels[i] {
			t.Fatalf("Pixel %d differs with worker count: %v vs %v", i, a.Pixels[i], b.Pixels[i])
		}
	}
}

func TestProgressiveRaytracer_Cancelled(t *testing.T) {
	rt := NewRaytracer(createGroundScene(2.0), smallConfig(4, 1), nil)
	pr := NewProgressiveRaytracer(rt, DefaultProgressiveConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	passChan, errChan := pr.RenderProgressive(ctx)
	for range passChan {
		t.Error("No pass should complete after cancellation")
	}
	if err := <-errChan; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestProgressiveRaytracer_InvalidConfig(t *testing.T) {
	config := smallConfig(4, 1)
	config.Width = 0
	pr := NewProgressiveRaytracer(NewRaytracer(createGroundScene(2.0), config, nil), DefaultProgressiveConfig())

	if _, _, err := pr.RenderPass(context.Background(), 1); err == nil {
		t.Error("Expected error for zero width")
	}

	passChan, errChan := pr.RenderProgressive(context.Background())
	for range passChan {
	}
	if err := <-errChan; err == nil {
		t.Error("Expected error on the error channel")
	}
}
