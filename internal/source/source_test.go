package source

import (
	"errors"
	"testing"

	"QuantChart/internal/model"
)

func TestLookup_Presets(t *testing.T) {
	m, err := Lookup("yahoo")
	if err != nil {
		t.Fatalf("Lookup(yahoo): %v", err)
	}
	if m.Close != "Close" || m.AdjustedClose != "Adj Close" {
		t.Errorf("unexpected yahoo mapping %+v", m)
	}
	if m.Dividend != "" {
		t.Errorf("yahoo has no dividend column, got %q", m.Dividend)
	}

	if _, err := Lookup("bloomberg"); !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestPresets_Listed(t *testing.T) {
	names := Presets()
	want := map[string]bool{"google": true, "mock": true, "quandl": true, "vstrader": true, "yahoo": true}
	if len(names) != len(want) {
		t.Fatalf("expected %d presets, got %v", len(want), names)
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected preset %q", n)
		}
	}
}

func TestResolve(t *testing.T) {
	full := map[string]string{}
	for _, k := range Keys {
		full[k] = "c_" + k
	}
	partial := map[string]string{"close": "px"}

	tests := []struct {
		name    string
		src     any
		wantErr bool
		close   string
	}{
		{"nil uses default", nil, false, "Close"},
		{"preset name", "vstrader", false, "close"},
		{"unknown preset", "nope", true, ""},
		{"full map", full, false, "c_close"},
		{"partial map", partial, true, ""},
		{"any map", map[string]any{"open": "o", "high": "h", "low": "l", "close": "c", "adj_open": nil,
			"adj_high": nil, "adj_low": nil, "adj_close": "ac", "volume": "v", "dividend": ""}, false, "c"},
		{"wrong type", 42, true, ""},
	}
	for _, tt := range tests {
		m, err := Resolve(tt.src)
		if tt.wantErr {
			if !errors.Is(err, model.ErrConfiguration) {
				t.Errorf("%s: expected ErrConfiguration, got %v", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if m.Close != tt.close {
			t.Errorf("%s: expected close %q, got %q", tt.name, tt.close, m.Close)
		}
	}
}

func TestSetDefault(t *testing.T) {
	t.Cleanup(func() { _ = SetDefault("yahoo") })

	if err := SetDefault("missing"); err == nil {
		t.Fatal("expected error for unknown default")
	}
	if err := SetDefault("quandl"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	m, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if m.Dividend != "Ex-Dividend" {
		t.Errorf("expected quandl default, got %+v", m)
	}
}
