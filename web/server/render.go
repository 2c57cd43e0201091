package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// ProgressUpdate represents a single progressive pass sent via SSE
type ProgressUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	Workers        int     `json:"workers"`
}

// handleRender streams a progressive render as Server-Sent Events: "console"
// for log lines, "progress" per finished pass, then "complete" or "error".
// The handler goroutine is the only writer to the response.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	// Use request context to detect client disconnection
	ctx := r.Context()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendSSEEvent(w, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sceneObj, config, err := s.createScene(req)
	if err != nil {
		s.sendSSEEvent(w, "error", err.Error())
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	logger := NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), consoleChan)

	raytracer := renderer.NewRaytracer(sceneObj, config, logger)
	progressive := renderer.NewProgressiveRaytracer(raytracer, renderer.ProgressiveConfig{
		InitialSamples: 1,
		MaxPasses:      req.MaxPasses,
	})

	startTime := time.Now()
	passesSent := 0
	passChan, errChan := progressive.RenderProgressive(ctx)

	for passChan != nil || errChan != nil {
		select {
		case msg := <-consoleChan:
			s.sendConsoleMessage(w, msg)

		case result, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			if err := s.sendPassUpdate(w, result, progressive.Passes(), startTime); err != nil {
				log.Printf("Error sending pass %d: %v", result.PassNumber, err)
				return
			}
			passesSent++

		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			if err == nil {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Warnf("Render cancelled after %d of %d passes\n", passesSent, progressive.Passes())
				return
			}
			logger.Errorf("Render failed: %v\n", err)
			s.flushConsole(w, consoleChan)
			s.sendSSEEvent(w, "error", fmt.Sprintf("Render error: %v", err))
			return

		case <-ctx.Done():
			logger.Warnf("Client disconnected after %d of %d passes\n", passesSent, progressive.Passes())
			return
		}
	}

	logger.Printf("Render finished in %v\n", time.Since(startTime).Round(time.Millisecond))
	s.flushConsole(w, consoleChan)
	s.sendSSEEvent(w, "complete", "Rendering completed")
}

// flushConsole forwards log lines still buffered after the render goroutine ends
func (s *Server) flushConsole(w http.ResponseWriter, consoleChan <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			s.sendConsoleMessage(w, msg)
		default:
			return
		}
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// sendPassUpdate encodes a finished pass and sends it as a progress event
func (s *Server) sendPassUpdate(w http.ResponseWriter, result renderer.PassResult, totalPasses int, startTime time.Time) error {
	imageData, err := s.imageToBase64PNG(result.Frame.Image())
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	update := ProgressUpdate{
		PassNumber:  result.PassNumber,
		TotalPasses: totalPasses,
		ImageData:   imageData,
		Stats: Stats{
			TotalPixels:    result.Stats.TotalPixels,
			TotalSamples:   result.Stats.TotalSamples,
			AverageSamples: result.Stats.AverageSamples,
			Workers:        result.Stats.Workers,
		},
		IsComplete: result.IsLast,
		ElapsedMs:  time.Since(startTime).Milliseconds(),
	}

	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return s.sendSSEEvent(w, "progress", string(data))
}

// sendConsoleMessage forwards a render log line to the client
func (s *Server) sendConsoleMessage(w http.ResponseWriter, msg ConsoleMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling console message: %v", err)
		return
	}
	s.sendSSEEvent(w, "console", string(data))
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming not supported")
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
