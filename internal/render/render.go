// Package render turns AI results into terminal output: Markdown built from
// templates, styled with glamour unless raw output is requested.
package render

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"

	"github.com/comigor/notesai/internal/aiclient"
)

// DefaultStyle is the glamour style used for terminals.
const DefaultStyle = "dark"

const analysisTemplate = `
{{- define "list" }}{{ range . }}
- {{ . }}{{ end }}
{{ end -}}
## {{ .Title }}

{{ .Result }}
{{ with .Suggestions }}
**Suggestions:**
{{ template "list" . }}{{ end }}
{{- with .RelatedTopics }}
**Related topics:**
{{ template "list" . }}{{ end }}
{{- if .Confidence }}
_Confidence: {{ .Confidence }}_
{{ end -}}
`

const statusTemplate = `## AI service status
{{ range . }}
- **{{ .Key }}:** {{ .Value }}{{ end }}
`

var (
	analysisTmpl = template.Must(template.New("analysis").Parse(analysisTemplate))
	statusTmpl   = template.Must(template.New("status").Parse(statusTemplate))
)

// Renderer formats results. With Raw set, Markdown is returned unstyled.
type Renderer struct {
	Style string
	Raw   bool
}

// New returns a renderer using style, or DefaultStyle when style is empty.
func New(style string, raw bool) *Renderer {
	if style == "" {
		style = DefaultStyle
	}
	return &Renderer{Style: style, Raw: raw}
}

// Markdown styles md for the terminal.
func (r *Renderer) Markdown(md string) (string, error) {
	if r.Raw {
		return md, nil
	}
	styled, err := glamour.Render(md, r.Style)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return styled, nil
}

// Analysis renders an analysis result with its suggestions.
func (r *Renderer) Analysis(action aiclient.Action, res *aiclient.AnalysisResponse) (string, error) {
	md, err := AnalysisMarkdown(action, res)
	if err != nil {
		return "", err
	}
	return r.Markdown(md)
}

// Status renders the backend status payload.
func (r *Renderer) Status(st aiclient.Status) (string, error) {
	md, err := StatusMarkdown(st)
	if err != nil {
		return "", err
	}
	return r.Markdown(md)
}

// Result renders an analysis result under an explicit title.
func (r *Renderer) Result(title string, res *aiclient.AnalysisResponse) (string, error) {
	md, err := ResultMarkdown(title, res)
	if err != nil {
		return "", err
	}
	return r.Markdown(md)
}

// AnalysisMarkdown builds the Markdown for an analysis result.
func AnalysisMarkdown(action aiclient.Action, res *aiclient.AnalysisResponse) (string, error) {
	return ResultMarkdown(action.Title(), res)
}

// ResultMarkdown builds the Markdown for any analysis response titled title.
func ResultMarkdown(title string, res *aiclient.AnalysisResponse) (string, error) {
	data := struct {
		Title         string
		Result        string
		Suggestions   []string
		RelatedTopics []string
		Confidence    string
	}{
		Title:         title,
		Result:        strings.TrimSpace(res.Result),
		Suggestions:   res.Suggestions(),
		RelatedTopics: res.RelatedTopics,
	}
	if res.ConfidenceScore != nil {
		data.Confidence = fmt.Sprintf("%.0f%%", *res.ConfidenceScore*100)
	}

	var buf bytes.Buffer
	if err := analysisTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing analysis template: %w", err)
	}
	return buf.String(), nil
}

type kv struct {
	Key   string
	Value any
}

// StatusMarkdown lists the status fields sorted by key.
func StatusMarkdown(st aiclient.Status) (string, error) {
	rows := make([]kv, 0, len(st))
	for _, k := range slices.Sorted(maps.Keys(st)) {
		rows = append(rows, kv{Key: k, Value: st[k]})
	}

	var buf bytes.Buffer
	if err := statusTmpl.Execute(&buf, rows); err != nil {
		return "", fmt.Errorf("error executing status template: %w", err)
	}
	return buf.String(), nil
}
