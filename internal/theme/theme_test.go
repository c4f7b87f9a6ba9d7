package theme

import (
	"errors"
	"testing"

	"QuantChart/internal/figure"
	"QuantChart/internal/model"
)

var requiredColors = []string{
	"primary", "secondary", "tertiary", "quaternary",
	"increasing", "decreasing", "border",
	"grey", "grey_strong", "fill", "fill_light",
}

func TestTemplate_EveryThemeIsComplete(t *testing.T) {
	p := New("")
	names := p.Names()
	if len(names) < 2 {
		t.Fatalf("expected at least light and dark themes, got %v", names)
	}
	for _, name := range names {
		tmpl, err := p.Template(name, figure.Overrides{})
		if err != nil {
			t.Fatalf("%s: Template: %v", name, err)
		}
		for _, key := range requiredColors {
			if _, err := tmpl.Color(key); err != nil {
				t.Errorf("%s: missing color %q", name, key)
			}
		}
		for _, kind := range append(figure.Kinds(), figure.KindBar) {
			if _, err := tmpl.Trace(kind); err != nil {
				t.Errorf("%s: missing trace skeleton %q", name, kind)
			}
		}
		l := tmpl.Layout
		if l.Legend == nil || l.Legend.X == nil || l.Legend.Y == nil {
			t.Errorf("%s: expected legend position in layout skeleton", name)
		}
		if l.Margin == nil {
			t.Errorf("%s: expected margin in layout skeleton", name)
		}
	}
}

func TestTemplate_UnknownTheme(t *testing.T) {
	_, err := New("").Template("solarized", figure.Overrides{})
	if !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestTemplate_DefaultTheme(t *testing.T) {
	light, _ := New("").Template("light", figure.Overrides{})
	def, err := New("").Template("", figure.Overrides{})
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if def.Colors["primary"] != light.Colors["primary"] {
		t.Errorf("expected light as default theme")
	}
	dark, _ := New("dark").Template("", figure.Overrides{})
	if dark.Colors["primary"] == light.Colors["primary"] {
		t.Errorf("expected configured default dark theme")
	}
}

func TestTemplate_OverridesWin(t *testing.T) {
	hidden := false
	tmpl, err := New("").Template("light", figure.Overrides{
		Title:      "SPY",
		HoverMode:  figure.HoverClosest,
		Legend:     &hidden,
		Dimensions: &[2]int{800, 600},
		Margin:     &figure.Margin{L: 1, R: 2, B: 3, T: 4},
		Layout:     &figure.LayoutSpec{Title: "Override", Height: 700},
	})
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	l := tmpl.Layout
	if l.Title != "Override" {
		t.Errorf("expected caller layout title to win, got %q", l.Title)
	}
	if l.HoverMode != figure.HoverClosest {
		t.Errorf("expected closest hovermode, got %q", l.HoverMode)
	}
	if l.ShowLegend == nil || *l.ShowLegend {
		t.Error("expected legend hidden")
	}
	if l.Width != 800 || l.Height != 700 {
		t.Errorf("expected 800x700, got %dx%d", l.Width, l.Height)
	}
	if l.Autosize == nil || *l.Autosize {
		t.Error("explicit dimensions must disable autosize")
	}
	if *l.Margin != (figure.Margin{L: 1, R: 2, B: 3, T: 4}) {
		t.Errorf("unexpected margin %+v", *l.Margin)
	}
}

func TestTemplate_FreshOnEveryCall(t *testing.T) {
	p := New("")
	a, _ := p.Template("light", figure.Overrides{})
	a.Colors["primary"] = "#000000"
	a.Layout.Margin.T = 999
	b, _ := p.Template("light", figure.Overrides{})
	if b.Colors["primary"] == "#000000" || b.Layout.Margin.T == 999 {
		t.Error("templates must not share state between calls")
	}
}
