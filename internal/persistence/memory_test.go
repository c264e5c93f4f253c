package persistence

import (
	"context"
	"errors"
	"testing"

	"prodplan/internal/model"
	"prodplan/internal/service/calendar"
)

func sampleData() model.AllMonthsData {
	ds := model.NewMonthDataset(calendar.WeeksInMonth(4, 2025))
	ds.RawMaterial[0].PCW = 160
	return model.AllMonthsData{model.NewMonthKey(2025, 4): ds}
}

func TestMemory_LoadEmpty(t *testing.T) {
	m := NewMemory()
	data, ok, err := m.Load(context.Background())
	if err != nil || ok || data != nil {
		t.Fatalf("Load() = %v, %v, %v; want nil, false, nil", data, ok, err)
	}
}

func TestMemory_SaveLoad(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	data := sampleData()

	if err := m.Save(ctx, data); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data[model.NewMonthKey(2025, 4)].RawMaterial[0].PCW = 1

	loaded, ok, err := m.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got := loaded[model.NewMonthKey(2025, 4)].RawMaterial[0].PCW; got != 160 {
		t.Errorf("stored pcw = %v, want 160 (Save should copy)", got)
	}
}

func TestMemory_SubscribeReceivesSaves(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var received []model.AllMonthsData
	unsubscribe, err := m.Subscribe(ctx, func(d model.AllMonthsData) {
		received = append(received, d)
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	data := sampleData()
	if err := m.Save(ctx, data); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(received) != 1 || !received[0].SameAs(data) {
		t.Fatalf("subscriber got %d updates", len(received))
	}

	unsubscribe()
	unsubscribe()
	if err := m.Save(ctx, data); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(received) != 1 {
		t.Errorf("unsubscribed callback still invoked, got %d updates", len(received))
	}
}

func TestMemory_FailWith(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	boom := errors.New("offline")

	m.FailWith(boom)
	if err := m.Save(ctx, sampleData()); !errors.Is(err, boom) {
		t.Fatalf("Save error = %v, want %v", err, boom)
	}
	if _, _, err := m.Load(ctx); !errors.Is(err, boom) {
		t.Fatalf("Load error = %v, want %v", err, boom)
	}

	m.FailWith(nil)
	if err := m.Save(ctx, sampleData()); err != nil {
		t.Fatalf("Save after recovery: %v", err)
	}
}

func TestMemory_CancelledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Save(ctx, sampleData()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Save with cancelled ctx = %v", err)
	}
}
