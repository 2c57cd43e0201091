package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"strconv"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// handleImage renders a scene in one shot and returns it as a PNG, or as a
// plain PPM when format=ppm. The render stops when the client goes away.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "png"
	}
	if format != "png" && format != "ppm" {
		http.Error(w, fmt.Sprintf("Invalid request: unsupported format %q", format), http.StatusBadRequest)
		return
	}

	sceneObj, config, err := s.createScene(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	logger := NewWebLogger(fmt.Sprintf("image-%s", req.Scene), nil)
	frame, stats, err := renderer.NewRaytracer(sceneObj, config, logger).Render(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warnf("Render of %s abandoned: %v\n", req.Scene, err)
			return
		}
		http.Error(w, fmt.Sprintf("Render error: %v", err), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	contentType := "image/png"
	if format == "ppm" {
		contentType = "image/x-portable-pixmap"
		err = frame.WritePPM(&buf)
	} else {
		err = png.Encode(&buf, frame.Image())
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Encode error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.Header().Set("X-Samples-Per-Pixel", strconv.Itoa(config.SamplesPerPixel))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing image: %v", err)
	}
}
