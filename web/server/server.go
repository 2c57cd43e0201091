package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Request limits and server timeouts
const (
	minSize           = 16
	maxSize           = 2000
	maxSamplesLimit   = 10000
	maxPassesLimit    = 100
	maxDepthLimit     = 200
	largeImagePixels  = 800 * 600
	largeImageSamples = 100
	shutdownTimeout   = 5 * time.Second
)

// Server handles web requests for the path tracer
type Server struct {
	port int
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string `json:"scene"`      // Scene name (e.g., "default")
	Width      int    `json:"width"`      // Image width
	Height     int    `json:"height"`     // Image height; 0 keeps the scene's aspect ratio
	MaxSamples int    `json:"maxSamples"` // Samples per pixel
	MaxPasses  int    `json:"maxPasses"`  // Maximum number of progressive passes
	MaxDepth   int    `json:"maxDepth"`   // Maximum ray bounce depth
	Seed       int64  `json:"seed"`       // Scene layout and sampling seed
}

// Handler returns the routes served by the web server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/image", s.handleImage)
	mux.HandleFunc("/api/render", s.handleRender)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully, giving
// in-flight renders a few seconds to notice their cancelled requests
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting web server on http://localhost%s", httpServer.Addr)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Printf("Shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes grouped by category
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.ListAllScenes())
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := scene.Lookup(sceneName, 42)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	config := sceneObj.SamplingConfig
	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"aspectRatio":     sceneObj.CameraConfig.AspectRatio,
			"animated":        scene.IsAnimated(sceneName),
		},
		"limits": map[string]interface{}{
			"width":      map[string]int{"min": minSize, "max": maxSize},
			"height":     map[string]int{"min": minSize, "max": maxSize},
			"maxSamples": map[string]int{"min": 1, "max": maxSamplesLimit},
			"maxPasses":  map[string]int{"min": 1, "max": maxPassesLimit},
			"maxDepth":   map[string]int{"min": 1, "max": maxDepthLimit},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 400, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.MaxSamples, err = parseIntParam(query, "maxSamples", 10, 1, maxSamplesLimit); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(query, "maxPasses", 5, 1, maxPassesLimit); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 10, 1, maxDepthLimit); err != nil {
		return nil, err
	}
	if req.Seed, err = parseSeedParam(query, "seed", 42); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > largeImagePixels && req.MaxSamples > largeImageSamples {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseSeedParam parses a seed over the full int64 range, matching the CLI -seed flag
func parseSeedParam(values url.Values, key string, defaultValue int64) (int64, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}

// createScene builds the requested scene and the sampling configuration for it.
// An explicit height changes the camera aspect ratio to match.
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, renderer.SamplingConfig, error) {
	sceneObj, err := scene.Lookup(req.Scene, req.Seed)
	if err != nil {
		return nil, renderer.SamplingConfig{}, err
	}

	height := req.Height
	if height == 0 {
		height = int(float64(req.Width)/sceneObj.CameraConfig.AspectRatio + 0.5)
		if height < 1 {
			height = 1
		}
	} else {
		sceneObj = sceneObj.WithCamera(renderer.CameraConfig{
			AspectRatio: float64(req.Width) / float64(height),
		})
	}

	config := sceneObj.SamplingConfig
	config.Width = req.Width
	config.Height = height
	config.SamplesPerPixel = req.MaxSamples
	config.MaxDepth = req.MaxDepth
	config.Seed = req.Seed
	config.NumWorkers = 0 // Auto-detect

	return sceneObj, config, nil
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
