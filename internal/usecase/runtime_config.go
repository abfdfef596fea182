package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
	"github.com/katheedev/crypto-sentiment/pkg/config"
)

// Settings is the runtime-tunable part of the analysis configuration.
// Persisted overrides are JSON fragments deep-merged onto the file defaults,
// so an override may set a single field without restating its section.
type Settings struct {
	Weights struct {
		Price     float64 `json:"price"`
		Technical float64 `json:"technical"`
		Sentiment float64 `json:"sentiment"`
	} `json:"weights"`
	Indicators struct {
		RSIPeriod        int `json:"rsi_period"`
		EMAFast          int `json:"ema_fast"`
		EMASlow          int `json:"ema_slow"`
		MACDSignal       int `json:"macd_signal"`
		ATRPeriod        int `json:"atr_period"`
		VolatilityWindow int `json:"volatility_window"`
		VolumeWindow     int `json:"volume_window"`
	} `json:"indicators"`
	Model struct {
		Horizon  int   `json:"horizon"`
		NumTrees int   `json:"num_trees"`
		MaxDepth int   `json:"max_depth"`
		Seed     int64 `json:"seed"`
	} `json:"model"`
	Backtest struct {
		LongThreshold  float64 `json:"long_threshold"`
		ShortThreshold float64 `json:"short_threshold"`
		InitialCash    float64 `json:"initial_cash"`
		FeeBps         float64 `json:"fee_bps"`
	} `json:"backtest"`
}

// SettingsFromConfig copies the file defaults into a Settings value.
func SettingsFromConfig(cfg *config.Config) Settings {
	var s Settings
	s.Weights.Price = cfg.Analysis.Weights.Price
	s.Weights.Technical = cfg.Analysis.Weights.Technical
	s.Weights.Sentiment = cfg.Analysis.Weights.Sentiment
	s.Indicators.RSIPeriod = cfg.Analysis.Indicators.RSIPeriod
	s.Indicators.EMAFast = cfg.Analysis.Indicators.EMAFast
	s.Indicators.EMASlow = cfg.Analysis.Indicators.EMASlow
	s.Indicators.MACDSignal = cfg.Analysis.Indicators.MACDSignal
	s.Indicators.ATRPeriod = cfg.Analysis.Indicators.ATRPeriod
	s.Indicators.VolatilityWindow = cfg.Analysis.Indicators.VolatilityWindow
	s.Indicators.VolumeWindow = cfg.Analysis.Indicators.VolumeWindow
	s.Model.Horizon = cfg.Analysis.Model.Horizon
	s.Model.NumTrees = cfg.Analysis.Model.NumTrees
	s.Model.MaxDepth = cfg.Analysis.Model.MaxDepth
	s.Model.Seed = cfg.Analysis.Model.Seed
	s.Backtest.LongThreshold = cfg.Analysis.Backtest.LongThreshold
	s.Backtest.ShortThreshold = cfg.Analysis.Backtest.ShortThreshold
	s.Backtest.InitialCash = cfg.Analysis.Backtest.InitialCash
	s.Backtest.FeeBps = cfg.Analysis.Backtest.FeeBps
	return s
}

// RuntimeConfig resolves effective settings: file defaults overlaid with
// persisted overrides. When no store is configured the defaults apply as-is.
type RuntimeConfig struct {
	defaults Settings
	store    domrepo.ConfigStore
}

func NewRuntimeConfig(defaults Settings, store domrepo.ConfigStore) *RuntimeConfig {
	return &RuntimeConfig{defaults: defaults, store: store}
}

// Effective merges persisted overrides onto the defaults. Override keys name
// a top-level section ("weights", "model", ...); values are JSON objects
// whose fields replace the matching default fields. Malformed overrides are
// skipped rather than failing the whole resolution.
func (rc *RuntimeConfig) Effective(ctx context.Context) (Settings, error) {
	if rc.store == nil {
		return rc.defaults, nil
	}
	overrides, err := rc.store.All(ctx)
	if err != nil {
		return rc.defaults, fmt.Errorf("load overrides: %w", err)
	}
	if len(overrides) == 0 {
		return rc.defaults, nil
	}

	base, err := toMap(rc.defaults)
	if err != nil {
		return rc.defaults, err
	}
	for key, raw := range overrides {
		var frag map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &frag); err != nil {
			continue
		}
		if section, ok := base[key].(map[string]interface{}); ok {
			base[key] = deepMerge(section, frag)
		}
	}

	merged := rc.defaults
	b, err := json.Marshal(base)
	if err != nil {
		return rc.defaults, err
	}
	if err := json.Unmarshal(b, &merged); err != nil {
		return rc.defaults, err
	}
	return merged, nil
}

// Set persists one override fragment. The value must be a JSON object.
func (rc *RuntimeConfig) Set(ctx context.Context, key, value string) error {
	if rc.store == nil {
		return fmt.Errorf("config store not configured")
	}
	var frag map[string]interface{}
	if err := json.Unmarshal([]byte(value), &frag); err != nil {
		return fmt.Errorf("override must be a JSON object: %w", err)
	}
	if _, ok := knownSections[key]; !ok {
		return fmt.Errorf("unknown config section %q", key)
	}
	return rc.store.Put(ctx, key, value)
}

// Overrides returns the raw persisted fragments.
func (rc *RuntimeConfig) Overrides(ctx context.Context) (map[string]string, error) {
	if rc.store == nil {
		return map[string]string{}, nil
	}
	return rc.store.All(ctx)
}

// Reset drops all persisted overrides.
func (rc *RuntimeConfig) Reset(ctx context.Context) error {
	if rc.store == nil {
		return nil
	}
	return rc.store.Reset(ctx)
}

var knownSections = map[string]struct{}{
	"weights":    {},
	"indicators": {},
	"model":      {},
	"backtest":   {},
}

func toMap(s Settings) (map[string]interface{}, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// deepMerge overlays src onto dst recursively; nested objects merge, scalars
// and arrays replace.
func deepMerge(dst, src map[string]interface{}) map[string]interface{} {
	for k, v := range src {
		if sv, ok := v.(map[string]interface{}); ok {
			if dv, ok := dst[k].(map[string]interface{}); ok {
				dst[k] = deepMerge(dv, sv)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}
