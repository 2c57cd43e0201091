package renderer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// shadowAcneEpsilon is the lower t bound for every scene query; scattered rays
// start on the surface and round-off would otherwise let them re-hit it.
const shadowAcneEpsilon = 0.001

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel (exactly this many are taken)
	MaxDepth        int   // Maximum ray bounce depth
	NumWorkers      int   // Number of parallel row workers (0 = use CPU count)
	Seed            int64 // Base seed; every row derives its own generator from it
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 10,
		MaxDepth:        10,
		NumWorkers:      0,
		Seed:            42,
	}
}

// Validate reports the first configuration value a render cannot use
func (c SamplingConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid image size %dx%d", c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("samples per pixel must be positive, got %d", c.SamplesPerPixel)
	case c.MaxDepth <= 0:
		return fmt.Errorf("max depth must be positive, got %d", c.MaxDepth)
	case c.NumWorkers < 0:
		return fmt.Errorf("worker count must not be negative, got %d", c.NumWorkers)
	}
	return nil
}

// Workers resolves the worker count, substituting the CPU count for 0
func (c SamplingConfig) Workers() int {
	if c.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return c.NumWorkers
}

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *Camera
	GetWorld() geometry.Shape
	GetBackgroundColors() (topColor, bottomColor core.Vec3)
}

// Raytracer handles the rendering process. It holds only read-only state, so
// a single instance serves every worker; randomness is passed in per row.
type Raytracer struct {
	scene  Scene
	camera *Camera
	world  geometry.Shape
	config SamplingConfig
	logger core.Logger
}

// NewRaytracer creates a new raytracer. A nil logger discards output.
func NewRaytracer(scene Scene, config SamplingConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Raytracer{
		scene:  scene,
		camera: scene.GetCamera(),
		world:  scene.GetWorld(),
		config: config,
		logger: logger,
	}
}

// Config returns the sampling configuration
func (rt *Raytracer) Config() SamplingConfig {
	return rt.config
}

// backgroundGradient returns a gradient color based on ray direction
func (rt *Raytracer) backgroundGradient(r core.Ray) core.Vec3 {
	topColor, bottomColor := rt.scene.GetBackgroundColors()

	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return bottomColor.Lerp(topColor, t)
}

// RayColor returns the light arriving along r after at most depth bounces
func (rt *Raytracer) RayColor(r core.Ray, depth int, random *rand.Rand) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	hit, isHit := rt.world.Hit(r, shadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return rt.backgroundGradient(r)
	}

	if hit.Material == nil {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	scatter, didScatter := hit.Material.Scatter(r, *hit, random)
	if !didScatter {
		return core.Vec3{X: 0, Y: 0, Z: 0} // Material absorbed the ray
	}

	return scatter.Attenuation.MultiplyVec(rt.RayColor(scatter.Scattered, depth-1, random))
}

// SampleRow traces samples jittered rays through every pixel of an image row
// and returns the per-pixel color sums. Row 0 is the top of the image.
func (rt *Raytracer) SampleRow(row, samples int, random *rand.Rand) []core.Vec3 {
	width, height := rt.config.Width, rt.config.Height
	sums := make([]core.Vec3, width)

	// Camera t runs bottom to top
	j := float64(height - 1 - row)

	for i := 0; i < width; i++ {
		colorAccum := core.Vec3{X: 0, Y: 0, Z: 0}

		for sample := 0; sample < samples; sample++ {
			s := (float64(i) + random.Float64()) / float64(width)
			t := (j + random.Float64()) / float64(height)

			ray := rt.camera.GetRay(s, t, random)
			colorAccum = colorAccum.Add(rt.RayColor(ray, rt.config.MaxDepth, random))
		}

		sums[i] = colorAccum
	}

	return sums
}

// RenderLinear renders the image and returns the linear per-pixel accumulators, indexed [row][column].
func (rt *Raytracer) RenderLinear(ctx context.Context) ([][]PixelStats, RenderStats, error) {
	if err := rt.config.Validate(); err != nil {
		return nil, RenderStats{}, err
	}

	startTime := time.Now()
	pixelStats := NewPixelStatsGrid(rt.config.Width, rt.config.Height)

	pool := NewWorkerPool(rt, rt.config.Workers(), rt.config.Height)
	pool.Start(ctx)

	for row := 0; row < rt.config.Height; row++ {
		pool.SubmitTask(RowTask{
			Row:     row,
			Samples: rt.config.SamplesPerPixel,
			Seed:    RowSeed(rt.config.Seed, 0, row),
		})
	}
	pool.Stop()

	if err := collectRows(pool, pixelStats); err != nil {
		return nil, RenderStats{}, err
	}

	stats := NewRenderStats(pixelStats, pool.GetNumWorkers(), time.Since(startTime))
	return pixelStats, stats, nil
}

// Render renders the full image and quantizes it into an 8-bit frame
func (rt *Raytracer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	rt.logger.Printf("Rendering %dx%d, %d samples/pixel, max depth %d, %d workers...\n",
		rt.config.Width, rt.config.Height, rt.config.SamplesPerPixel, rt.config.MaxDepth, rt.config.Workers())

	pixelStats, stats, err := rt.RenderLinear(ctx)
	if err != nil {
		return nil, RenderStats{}, fmt.Errorf("render: %w", err)
	}

	rt.logger.Printf("Render completed in %v (%d samples)\n", stats.Duration, stats.TotalSamples)
	return NewFrame(pixelStats), stats, nil
}

// collectRows drains every row result into the grid by row index, so the
// order workers finish in never affects the image.
func collectRows(pool *WorkerPool, pixelStats [][]PixelStats) error {
	var firstErr error
	for {
		result, ok := pool.GetResult()
		if !ok {
			return firstErr
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		row := pixelStats[result.Row]
		for x, sum := range result.Colors {
			row[x].AddSamples(sum, result.Samples)
		}
	}
}

// RowSeed mixes the base seed, pass number and row index into an independent
// generator seed (splitmix64 finalizer), so no two rows share random streams.
func RowSeed(seed int64, pass, row int) int64 {
	z := uint64(seed) + uint64(pass)*0xD1B54A32D192ED03 + uint64(row+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
