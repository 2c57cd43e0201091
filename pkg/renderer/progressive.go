package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	InitialSamples int // Samples for first pass (1 recommended)
	MaxPasses      int // Maximum number of passes
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		InitialSamples: 1,
		MaxPasses:      5,
	}
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Frame      *Frame
	Stats      RenderStats
	IsLast     bool
}

// ProgressiveRaytracer refines one image over several passes. Each pass adds
// samples to the shared accumulators until the raytracer's SamplesPerPixel is reached.
type ProgressiveRaytracer struct {
	raytracer  *Raytracer
	config     ProgressiveConfig
	pixelStats [][]PixelStats
	logger     core.Logger
}

// NewProgressiveRaytracer creates a new progressive raytracer
func NewProgressiveRaytracer(raytracer *Raytracer, config ProgressiveConfig) *ProgressiveRaytracer {
	samplingConfig := raytracer.Config()

	if config.InitialSamples <= 0 {
		config.InitialSamples = 1
	}
	if config.InitialSamples > samplingConfig.SamplesPerPixel {
		config.InitialSamples = samplingConfig.SamplesPerPixel
	}
	// Never schedule a pass that would add zero samples
	remaining := samplingConfig.SamplesPerPixel - config.InitialSamples
	if config.MaxPasses > remaining+1 {
		config.MaxPasses = remaining + 1
	}
	if config.MaxPasses < 1 {
		config.MaxPasses = 1
	}

	return &ProgressiveRaytracer{
		raytracer:  raytracer,
		config:     config,
		pixelStats: NewPixelStatsGrid(samplingConfig.Width, samplingConfig.Height),
		logger:     raytracer.logger,
	}
}

// Passes returns the number of passes that will be rendered
func (pr *ProgressiveRaytracer) Passes() int {
	return pr.config.MaxPasses
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	maxSamples := pr.raytracer.Config().SamplesPerPixel

	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 || passNumber >= pr.config.MaxPasses {
		return maxSamples
	}

	// First pass is a quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := maxSamples - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	return pr.config.InitialSamples + (passNumber-1)*samplesPerPass
}

// RenderPass renders a single progressive pass using parallel processing
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int) (*Frame, RenderStats, error) {
	startTime := time.Now()
	config := pr.raytracer.Config()
	if err := config.Validate(); err != nil {
		return nil, RenderStats{}, err
	}

	targetSamples := pr.getSamplesForPass(passNumber)
	additional := targetSamples - pr.pixelStats[0][0].SampleCount

	pr.logger.Printf("Pass %d: Target %d samples per pixel (using %d workers)...\n",
		passNumber, targetSamples, config.Workers())

	if additional > 0 {
		pool := NewWorkerPool(pr.raytracer, config.Workers(), config.Height)
		pool.Start(ctx)
		for row := 0; row < config.Height; row++ {
			pool.SubmitTask(RowTask{
				Row:     row,
				Samples: additional,
				Seed:    RowSeed(config.Seed, passNumber, row),
			})
		}
		pool.Stop()

		if err := collectRows(pool, pr.pixelStats); err != nil {
			return nil, RenderStats{}, fmt.Errorf("pass %d: %w", passNumber, err)
		}
	}

	stats := NewRenderStats(pr.pixelStats, config.Workers(), time.Since(startTime))
	return NewFrame(pr.pixelStats), stats, nil
}

// RenderProgressive renders every pass in a background goroutine. Pass results
// arrive on the first channel; a failure or cancellation arrives on the second.
// Both channels are closed when rendering ends.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		if err := pr.raytracer.Config().Validate(); err != nil {
			errChan <- err
			return
		}

		pr.logger.Printf("Starting progressive rendering with %d passes...\n", pr.config.MaxPasses)

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			frame, stats, err := pr.RenderPass(ctx, pass)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Printf("Pass %d completed in %v (%.0f samples/pixel)\n",
				pass, stats.Duration, stats.AverageSamples)

			result := PassResult{
				PassNumber: pass,
				Frame:      frame,
				Stats:      stats,
				IsLast:     pass == pr.config.MaxPasses,
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, errChan
}
