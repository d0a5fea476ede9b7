package server

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/robjohnston/herogen/internal/config"
)

var pageTmpl = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} | herogen preview</title>
<style>
body { margin: 0; padding: 32px; background: #1e293b; color: #e2e8f0; font-family: sans-serif; }
img { display: block; max-width: 100%; height: auto; box-shadow: 0 8px 32px rgba(0,0,0,.5); }
figcaption { margin-top: 12px; font-size: 14px; color: #94a3b8; }
ul { font-size: 14px; color: #94a3b8; }
</style>
</head>
<body>
<figure>
{{range .Images}}<img src="/{{.}}?v={{$.Version}}" width="{{$.Width}}" height="{{$.Height}}" alt="{{$.Title}}">
{{end}}<figcaption>{{.Width}}×{{.Height}}, rebuild {{.Version}}</figcaption>
</figure>
{{with .Overflow}}<ul>{{range .}}<li>label runs past the right edge: {{.}}</li>{{end}}</ul>{{end}}
</body>
</html>
`))

// Banner describes the banner currently on display.
type Banner struct {
	Images   []string // file names relative to the output directory
	Width    int
	Height   int
	Overflow []string
}

type pageData struct {
	Banner
	Title   string
	Version uint64
}

// renderPage builds the preview page for b. The title is the label text of
// cfg joined into one line.
func renderPage(cfg *config.HeroConfig, b Banner, version uint64) ([]byte, error) {
	var parts []string
	for _, l := range cfg.Labels {
		parts = append(parts, l.Text)
	}
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, pageData{
		Banner:  b,
		Title:   strings.Join(parts, " "),
		Version: version,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
