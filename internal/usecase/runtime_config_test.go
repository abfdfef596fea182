package usecase

import (
	"context"
	"testing"
)

type memConfigStore struct {
	data map[string]string
}

func (m *memConfigStore) All(context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *memConfigStore) Put(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memConfigStore) Reset(context.Context) error {
	m.data = map[string]string{}
	return nil
}

func TestEffectiveWithoutStoreReturnsDefaults(t *testing.T) {
	defaults := defaultSettings(t)
	rc := NewRuntimeConfig(defaults, nil)
	got, err := rc.Effective(context.Background())
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if got != defaults {
		t.Fatalf("expected defaults unchanged")
	}
}

func TestOverridesMergePartially(t *testing.T) {
	defaults := defaultSettings(t)
	store := &memConfigStore{data: map[string]string{}}
	rc := NewRuntimeConfig(defaults, store)

	if err := rc.Set(context.Background(), "weights", `{"sentiment": 0.9}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := rc.Set(context.Background(), "backtest", `{"fee_bps": 25}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := rc.Effective(context.Background())
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if got.Weights.Sentiment != 0.9 {
		t.Fatalf("override not applied: %v", got.Weights.Sentiment)
	}
	if got.Weights.Price != defaults.Weights.Price {
		t.Fatalf("untouched field changed: %v", got.Weights.Price)
	}
	if got.Backtest.FeeBps != 25 {
		t.Fatalf("backtest override not applied: %v", got.Backtest.FeeBps)
	}
	if got.Indicators != defaults.Indicators {
		t.Fatalf("indicators should be unchanged")
	}
}

func TestSetRejectsInvalidOverrides(t *testing.T) {
	rc := NewRuntimeConfig(defaultSettings(t), &memConfigStore{data: map[string]string{}})
	if err := rc.Set(context.Background(), "weights", `not json`); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
	if err := rc.Set(context.Background(), "nonsense", `{}`); err == nil {
		t.Fatalf("expected error for unknown section")
	}
}

func TestMalformedStoredOverrideIsSkipped(t *testing.T) {
	defaults := defaultSettings(t)
	store := &memConfigStore{data: map[string]string{"weights": "{broken"}}
	rc := NewRuntimeConfig(defaults, store)
	got, err := rc.Effective(context.Background())
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if got != defaults {
		t.Fatalf("malformed override should leave defaults intact")
	}
}

func TestResetDropsOverrides(t *testing.T) {
	defaults := defaultSettings(t)
	store := &memConfigStore{data: map[string]string{}}
	rc := NewRuntimeConfig(defaults, store)

	if err := rc.Set(context.Background(), "model", `{"horizon": 7}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := rc.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, err := rc.Effective(context.Background())
	if err != nil {
		t.Fatalf("effective: %v", err)
	}
	if got.Model.Horizon != defaults.Model.Horizon {
		t.Fatalf("expected defaults after reset, got horizon %d", got.Model.Horizon)
	}
}
