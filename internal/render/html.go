package render

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"

	"QuantChart/internal/figure"
)

const plotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var page = template.Must(template.New("figure").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}"></script>
</head>
<body style="margin:0">
<div id="figure" style="width:100%;height:100vh"></div>
<script>
Plotly.newPlot("figure", {{.Data}}, {{.Layout}}, {{.Config}});
</script>
</body>
</html>
`))

type pageData struct {
	Title  string
	Script string
	Data   []figure.TraceSpec
	Layout figure.LayoutSpec
	Config map[string]any
}

// HTMLRenderer writes a standalone plotly page per figure.
type HTMLRenderer struct {
	Dir         string
	ShowLink    bool
	LinkText    string
	OpenBrowser bool

	// Open launches the system browser; tests replace it.
	Open func(path string) error
}

// NewHTMLRenderer returns a renderer writing into dir.
func NewHTMLRenderer(dir string, showLink bool, linkText string, launch bool) *HTMLRenderer {
	return &HTMLRenderer{Dir: dir, ShowLink: showLink, LinkText: linkText, OpenBrowser: launch, Open: openBrowser}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// fileName turns an identifier such as "QuantChart 2024-01-02 15:04:05"
// into a portable file name with ext.
func fileName(id, ext string) string {
	return unsafeName.ReplaceAllString(id, "_") + ext
}

// Render writes <dir>/<id>.html and returns its path.
func (r *HTMLRenderer) Render(ctx context.Context, fig *figure.Figure, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.Dir, fileName(id, ".html"))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	data := pageData{
		Title:  id,
		Script: plotlyCDN,
		Data:   fig.Traces,
		Layout: fig.Layout,
		Config: map[string]any{"showLink": r.ShowLink, "linkText": r.LinkText, "responsive": true},
	}
	if fig.Traces == nil {
		data.Data = []figure.TraceSpec{}
	}
	if err := page.Execute(f, data); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	if r.OpenBrowser && r.Open != nil {
		if err := r.Open(path); err != nil {
			return path, fmt.Errorf("open browser: %w", err)
		}
	}
	return path, nil
}

// openBrowser opens path with the platform's default handler.
func openBrowser(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
