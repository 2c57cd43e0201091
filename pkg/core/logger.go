package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything; used when a caller passes no logger
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}
