// Package source resolves vendor column names into the canonical OHLCV slots.
package source

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"QuantChart/internal/model"
)

//go:embed presets.yaml
var presetsYAML []byte

// Mapping names the table column holding each canonical field.
// An empty name means the field is never present.
type Mapping struct {
	Open          string `yaml:"open"`
	High          string `yaml:"high"`
	Low           string `yaml:"low"`
	Close         string `yaml:"close"`
	AdjustedOpen  string `yaml:"adj_open"`
	AdjustedHigh  string `yaml:"adj_high"`
	AdjustedLow   string `yaml:"adj_low"`
	AdjustedClose string `yaml:"adj_close"`
	Volume        string `yaml:"volume"`
	Dividend      string `yaml:"dividend"`
}

// Keys lists the canonical slot names accepted by FromMap.
var Keys = []string{
	"open", "high", "low", "close",
	"adj_open", "adj_high", "adj_low", "adj_close",
	"volume", "dividend",
}

// BarColumns returns the columns a bar is written to under this mapping.
func (m Mapping) BarColumns() model.BarColumns {
	return model.BarColumns{
		Open:     m.Open,
		High:     m.High,
		Low:      m.Low,
		Close:    m.Close,
		AdjClose: m.AdjustedClose,
		Volume:   m.Volume,
	}
}

var (
	presetsOnce sync.Once
	presets     map[string]Mapping
	presetsErr  error

	mu            sync.RWMutex
	defaultPreset = "yahoo"
)

func loadPresets() (map[string]Mapping, error) {
	presetsOnce.Do(func() {
		presets = make(map[string]Mapping)
		if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
			presetsErr = fmt.Errorf("parse source presets: %w", err)
		}
	})
	return presets, presetsErr
}

// Presets returns the names of the built-in presets, sorted.
func Presets() []string {
	p, _ := loadPresets()
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named preset.
func Lookup(name string) (Mapping, error) {
	p, err := loadPresets()
	if err != nil {
		return Mapping{}, err
	}
	m, ok := p[name]
	if !ok {
		return Mapping{}, fmt.Errorf("%w: unknown source %q", model.ErrConfiguration, name)
	}
	return m, nil
}

// SetDefault sets the process-wide preset used when no source is given.
func SetDefault(name string) error {
	if _, err := Lookup(name); err != nil {
		return err
	}
	mu.Lock()
	defaultPreset = name
	mu.Unlock()
	return nil
}

// Default returns the process-wide default preset.
func Default() (Mapping, error) {
	mu.RLock()
	name := defaultPreset
	mu.RUnlock()
	return Lookup(name)
}

// FromMap builds a Mapping from an explicit slot map. Every key in Keys
// must be present; values may be empty.
func FromMap(m map[string]string) (Mapping, error) {
	for _, k := range Keys {
		if _, ok := m[k]; !ok {
			return Mapping{}, fmt.Errorf("%w: mapping is missing %q", model.ErrConfiguration, k)
		}
	}
	return Mapping{
		Open:          m["open"],
		High:          m["high"],
		Low:           m["low"],
		Close:         m["close"],
		AdjustedOpen:  m["adj_open"],
		AdjustedHigh:  m["adj_high"],
		AdjustedLow:   m["adj_low"],
		AdjustedClose: m["adj_close"],
		Volume:        m["volume"],
		Dividend:      m["dividend"],
	}, nil
}

// Resolve turns a loosely typed source into a Mapping: nil selects the
// default preset, a string names a preset, and a map is a full mapping.
func Resolve(src any) (Mapping, error) {
	switch v := src.(type) {
	case nil:
		return Default()
	case string:
		return Lookup(v)
	case Mapping:
		return v, nil
	case map[string]string:
		return FromMap(v)
	case map[string]any:
		m := make(map[string]string, len(v))
		for k, raw := range v {
			s, ok := raw.(string)
			if !ok && raw != nil {
				return Mapping{}, fmt.Errorf("%w: mapping value for %q is %T, not string", model.ErrConfiguration, k, raw)
			}
			m[k] = s
		}
		return FromMap(m)
	default:
		return Mapping{}, fmt.Errorf("%w: invalid source %v (%T); it should be a preset name or a mapping", model.ErrConfiguration, src, src)
	}
}
