package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/preview"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// options holds the parsed command line. Zero numeric values keep the scene's own defaults.
type options struct {
	sceneName string
	width     int
	samples   int
	depth     int
	workers   int
	seed      int64
	format    string
	frames    int
	passes    int
	outputDir string
	preview   bool
}

func main() {
	var opts options

	// Parse command line flags
	flag.StringVar(&opts.sceneName, "scene", "default", "Scene name: "+strings.Join(scene.Names(), ", "))
	flag.IntVar(&opts.width, "width", 0, "Image width in pixels (0 = scene default); height follows the camera aspect ratio")
	flag.IntVar(&opts.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&opts.depth, "depth", 0, "Maximum ray bounce depth (0 = scene default)")
	flag.IntVar(&opts.workers, "workers", 0, "Number of parallel row workers (0 = CPU count)")
	flag.Int64Var(&opts.seed, "seed", 42, "Random seed for scene layout and sampling")
	flag.StringVar(&opts.format, "format", "png", "Output format: 'png' or 'ppm'")
	flag.IntVar(&opts.frames, "frames", 0, "Render an N-frame camera fly-by instead of a single image (animated scenes only)")
	flag.IntVar(&opts.passes, "passes", 5, "Progressive passes shown in the terminal preview")
	flag.StringVar(&opts.outputDir, "output", "output", "Base output directory")
	flag.BoolVar(&opts.preview, "preview", false, "Show the image in the terminal while rendering")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Sphere Path Tracer")
		fmt.Println("Usage: pathtracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, group := range scene.ListAllScenes().Groups {
			for _, info := range group.Scenes {
				fmt.Printf("  %-14s %s\n", info.ID, info.Description)
			}
		}
		fmt.Println()
		fmt.Println("Output will be saved to <output>/<scene>/render_<timestamp>.<format>,")
		fmt.Println("or <output>/<scene>/frame<n>.<format> with -frames.")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Render interrupted")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run renders either a single image or a fly-by sequence according to opts
func run(ctx context.Context, opts options) error {
	if opts.format != "png" && opts.format != "ppm" {
		return fmt.Errorf("unsupported format %q", opts.format)
	}
	if opts.frames > 0 && !scene.IsAnimated(opts.sceneName) {
		return fmt.Errorf("scene %q has no camera path for -frames", opts.sceneName)
	}

	selectedScene, err := createScene(opts.sceneName, opts.seed)
	if err != nil {
		return err
	}
	config := samplingConfig(selectedScene, opts)

	outputDir, err := createOutputDir(opts.outputDir, opts.sceneName)
	if err != nil {
		return err
	}

	// The preview puts the terminal in raw mode, so Ctrl-C reaches it as a
	// key press and has to cancel the render itself.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var logger core.Logger = renderer.NewDefaultLogger()
	var term *preview.Preview
	if opts.preview {
		term, err = preview.New(cancel)
		if err != nil {
			return err
		}
		defer term.Close()
		// Plain output would tear the preview
		logger = core.NopLogger{}
	}

	logger.Printf("Starting Sphere Path Tracer: W%dxH%d, scene %s\n", config.Width, config.Height, opts.sceneName)

	if opts.frames > 0 {
		return renderFlyBy(ctx, selectedScene, config, opts, outputDir, logger, term)
	}
	return renderSingle(ctx, selectedScene, config, opts, outputDir, logger, term)
}

// renderSingle renders one image, progressively when a preview is attached
func renderSingle(ctx context.Context, s *scene.Scene, config renderer.SamplingConfig, opts options,
	outputDir string, logger core.Logger, term *preview.Preview) error {
	raytracer := renderer.NewRaytracer(s, config, logger)

	var frame *renderer.Frame
	var caption string

	if term == nil {
		var stats renderer.RenderStats
		var err error
		frame, stats, err = raytracer.Render(ctx)
		if err != nil {
			return err
		}
		logger.Printf("Samples per pixel: %.1f, %d workers\n", stats.AverageSamples, stats.Workers)
	} else {
		progressive := renderer.NewProgressiveRaytracer(raytracer, renderer.ProgressiveConfig{
			InitialSamples: 1,
			MaxPasses:      opts.passes,
		})
		passChan, errChan := progressive.RenderProgressive(ctx)
		for result := range passChan {
			frame = result.Frame
			caption = fmt.Sprintf("%s: pass %d/%d, %.0f spp, %v", opts.sceneName,
				result.PassNumber, progressive.Passes(), result.Stats.AverageSamples, result.Stats.Duration.Round(time.Millisecond))
			term.Update(frame, caption)
		}
		if err := <-errChan; err != nil {
			return err
		}
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.%s", timestamp, opts.format))
	if err := writeFrame(frame, filename, opts.format); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", filename)

	if term != nil {
		return term.Wait(ctx, frame, caption+" - saved, press q to exit")
	}
	return nil
}

// renderFlyBy renders frames 1..opts.frames along the fly-by path. The
// world is built once and shared by every frame's camera.
func renderFlyBy(ctx context.Context, s *scene.Scene, config renderer.SamplingConfig, opts options,
	outputDir string, logger core.Logger, term *preview.Preview) error {
	for n := 1; n <= opts.frames; n++ {
		frameScene := s.WithCamera(scene.FlyByCameraConfig(n))
		logger.Printf("Rendering frame %d, camera at %v\n", n, frameScene.CameraConfig.Center)

		start := time.Now()
		frame, _, err := renderer.NewRaytracer(frameScene, config, logger).Render(ctx)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("frame%d.%s", n, opts.format))
		if err := writeFrame(frame, filename, opts.format); err != nil {
			return err
		}

		duration := time.Since(start)
		logger.Printf("Frame Time: %v\n", duration.Round(time.Millisecond))
		logger.Printf("----------------\n")

		if term != nil {
			term.Update(frame, fmt.Sprintf("frame %d/%d, %v", n, opts.frames, duration.Round(time.Millisecond)))
		}
	}
	return nil
}

// createScene builds the named scene or reports the names that exist
func createScene(sceneName string, seed int64) (*scene.Scene, error) {
	return scene.Lookup(sceneName, seed)
}

// samplingConfig applies the command line overrides to the scene's sampling configuration
func samplingConfig(s *scene.Scene, opts options) renderer.SamplingConfig {
	config := s.SamplingConfig
	if opts.width > 0 {
		config.Width = opts.width
		config.Height = int(math.Round(float64(opts.width) / s.CameraConfig.AspectRatio))
		if config.Height < 1 {
			config.Height = 1
		}
	}
	if opts.samples > 0 {
		config.SamplesPerPixel = opts.samples
	}
	if opts.depth > 0 {
		config.MaxDepth = opts.depth
	}
	if opts.workers > 0 {
		config.NumWorkers = opts.workers
	}
	config.Seed = opts.seed
	return config
}

// createOutputDir creates <base>/<scene> and returns its path
func createOutputDir(base, sceneName string) (string, error) {
	outputDir := filepath.Join(base, sceneName)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}
	return outputDir, nil
}

// writeFrame saves frame to filename as PNG or plain-text PPM
func writeFrame(frame *renderer.Frame, filename, format string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	switch format {
	case "ppm":
		err = frame.WritePPM(file)
	default:
		err = png.Encode(file, frame.Image())
	}
	if err != nil {
		return fmt.Errorf("error saving %s: %w", strings.ToUpper(format), err)
	}
	return file.Close()
}
