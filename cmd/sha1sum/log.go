package main

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/logfmt"
	"github.com/apex/log/handlers/text"
)

// prepareLogger returns a logger writing to stderr. stdout only receives the
// requested output, so that it can be redirected to a checksum file.
func prepareLogger(level string, format string) *log.Logger {
	var handler log.Handler
	switch format {
	case "text":
		handler = text.New(os.Stderr)
	case "logfmt":
		handler = logfmt.New(os.Stderr)
	case "json":
		handler = json.New(os.Stderr)
	default:
		panic(fmt.Sprintf("unsupported log format: '%s'", format))
	}

	return &log.Logger{
		Level:   log.MustParseLevel(level),
		Handler: handler,
	}
}
