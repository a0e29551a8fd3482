// Package sysutil holds process-level helpers used during service bootstrap.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

// SetLogLevel applies the configured level to zerolog's global filter.
// "warning" is accepted as an alias for "warn". Empty or unrecognized
// values fall back to info, the level the capture stations run at.
func SetLogLevel(lvl string) {
	s := strings.ToLower(strings.TrimSpace(lvl))
	switch s {
	case "":
		s = "info"
	case "warning":
		s = "warn"
	}
	parsed, err := zerolog.ParseLevel(s)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
