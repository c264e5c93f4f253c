package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInit_WritesConsoleAndFile(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer
	if err := Init(Options{Dir: dir, Console: &console}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	log.Debug().Msg("hidden")
	log.Info().Str("key", "2025-4").Msg("month loaded")

	out := console.String()
	if !strings.Contains(out, "month loaded") || strings.Contains(out, "hidden") {
		t.Errorf("console output = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"key":"2025-4"`) {
		t.Errorf("file output = %q", data)
	}
}

func TestInit_Verbose(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var console bytes.Buffer
	if err := Init(Options{Verbose: true, Console: &console}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	log.Debug().Msg("details")
	if !strings.Contains(console.String(), "details") {
		t.Errorf("debug line missing: %q", console.String())
	}
}
