package app

import "go.trai.ch/bb/internal/core/ports"

// Components holds what the command line needs from the object graph.
type Components struct {
	App    *App
	Logger ports.Logger
}

// logSettings is implemented by loggers whose format can change at runtime.
type logSettings interface {
	SetJSON(enable bool)
	SetQuiet(enable bool)
}

// ConfigureLogging switches the logger to JSON records or to warnings only.
// Loggers without runtime settings are left as they are.
func (c *Components) ConfigureLogging(json, quiet bool) {
	if l, ok := c.Logger.(logSettings); ok {
		l.SetJSON(json)
		l.SetQuiet(quiet)
	}
}
