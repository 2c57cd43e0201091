package renderer

import (
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int           // Total number of pixels rendered
	TotalSamples   int           // Total number of samples taken
	AverageSamples float64       // Average samples per pixel
	Workers        int           // Row workers used
	Duration       time.Duration // Wall clock time for the render
}

// NewRenderStats summarizes a filled pixel grid
func NewRenderStats(pixelStats [][]PixelStats, workers int, duration time.Duration) RenderStats {
	stats := RenderStats{Workers: workers, Duration: duration}
	for _, row := range pixelStats {
		for _, ps := range row {
			stats.TotalPixels++
			stats.TotalSamples += ps.SampleCount
		}
	}
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	return stats
}

// PixelStats accumulates color samples for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// NewPixelStatsGrid allocates a height x width grid of empty accumulators
func NewPixelStatsGrid(width, height int) [][]PixelStats {
	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}
	return pixelStats
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.AddSamples(color, 1)
}

// AddSamples adds a precomputed sum of count samples
func (ps *PixelStats) AddSamples(sum core.Vec3, count int) {
	ps.ColorAccum = ps.ColorAccum.Add(sum)
	ps.SampleCount += count
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Divide(float64(ps.SampleCount))
}
