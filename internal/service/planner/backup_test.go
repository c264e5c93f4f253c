package planner

import (
	"os"
	"strings"
	"testing"
	"time"

	"prodplan/internal/model"
)

func TestBackups_WriteAndPrune(t *testing.T) {
	dir := t.TempDir()
	b := NewBackups(dir, 2)
	tick := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	if _, ok, err := b.Latest(); err != nil || ok {
		t.Fatalf("Latest on empty dir = %v, %v", ok, err)
	}

	var last model.AllMonthsData
	for i := 1; i <= 3; i++ {
		last = monthWith(float64(i))
		if _, err := b.Write(last); err != nil {
			t.Fatalf("Write #%d: %v", i, err)
		}
	}

	paths, err := b.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("kept %d backups, want 2", len(paths))
	}

	latest, ok, err := b.Latest()
	if err != nil || !ok {
		t.Fatalf("Latest = %v, %v", ok, err)
	}
	if !latest.SameAs(last) {
		t.Error("Latest should return the most recent backup")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestNewBackups_DefaultMax(t *testing.T) {
	if b := NewBackups(t.TempDir(), 0); b.max != DefaultMaxBackups {
		t.Errorf("max = %d, want %d", b.max, DefaultMaxBackups)
	}
}
