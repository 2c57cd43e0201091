package server

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// Console message levels
const (
	levelInfo    = "info"
	levelWarning = "warning"
	levelError   = "error"
)

// WebLogger implements core.Logger by mirroring render log lines to the
// server log and, when a channel is set, to the client's console stream.
// Renderer output arrives through Printf at info level; the handlers report
// cancelled and failed renders through Warnf and Errorf.
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render. consoleChan may be nil.
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	wl.emit(levelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs a line the client should notice, such as a cancelled render
func (wl *WebLogger) Warnf(format string, args ...interface{}) {
	wl.emit(levelWarning, fmt.Sprintf(format, args...))
}

// Errorf logs a failed render
func (wl *WebLogger) Errorf(format string, args ...interface{}) {
	wl.emit(levelError, fmt.Sprintf(format, args...))
}

func (wl *WebLogger) emit(level, message string) {
	line := strings.TrimRight(message, "\n")
	if level == levelInfo {
		log.Printf("[%s] %s", wl.renderID, line)
	} else {
		log.Printf("[%s] %s: %s", wl.renderID, strings.ToUpper(level), line)
	}

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			RenderID:  wl.renderID,
			Message:   message,
			Timestamp: time.Now(),
			Level:     level,
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}
