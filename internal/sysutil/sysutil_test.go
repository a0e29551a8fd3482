package sysutil

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevel(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := map[string]zerolog.Level{
		"debug":       zerolog.DebugLevel,
		"  DeBuG  ":   zerolog.DebugLevel,
		"info":        zerolog.InfoLevel,
		"":            zerolog.InfoLevel,
		"warn":        zerolog.WarnLevel,
		"warning":     zerolog.WarnLevel, // env files commonly spell it out
		"error":       zerolog.ErrorLevel,
		"fatal":       zerolog.FatalLevel,
		"panic":       zerolog.PanicLevel,
		"not-a-level": zerolog.InfoLevel,
	}
	for in, want := range cases {
		SetLogLevel(in)
		if got := zerolog.GlobalLevel(); got != want {
			t.Errorf("SetLogLevel(%q): global level = %v, want %v", in, got, want)
		}
	}
}
