// Package theme provides the built-in figure themes.
package theme

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"QuantChart/internal/figure"
	"QuantChart/internal/model"
)

//go:embed themes/*.yaml
var themeFS embed.FS

// DefaultTheme is used when no theme is requested.
const DefaultTheme = "light"

// Provider serves the embedded themes. It implements figure.TemplateProvider.
type Provider struct {
	// Default replaces DefaultTheme when set.
	Default string
}

// New returns a Provider whose default theme is def, or DefaultTheme when def is empty.
func New(def string) *Provider {
	return &Provider{Default: def}
}

// Names returns the available theme identifiers, sorted.
func (p *Provider) Names() []string {
	entries, _ := fs.ReadDir(themeFS, "themes")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Template decodes the theme afresh and merges o into its layout skeleton.
func (p *Provider) Template(id string, o figure.Overrides) (*figure.Template, error) {
	if id == "" {
		id = p.Default
	}
	if id == "" {
		id = DefaultTheme
	}
	raw, err := themeFS.ReadFile(path.Join("themes", id+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: unknown theme %q", model.ErrConfiguration, id)
	}
	var t figure.Template
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse theme %q: %w", id, err)
	}
	o.Apply(&t.Layout)
	return &t, nil
}
