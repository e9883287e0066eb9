// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package evaluation

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/goccy/go-json"
)

// Report formats.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
)

var banner = strings.Repeat("=", 60)

var htmlReport = template.Must(template.New("report").Parse(`<html>
<head><title>Evaluation Dashboard</title></head>
<body>
<h1>Evaluation Dashboard Report</h1>
<table border="1">
<tr><th>Metric</th><th>Value</th></tr>
{{- range .Rows}}
<tr><td>{{.Name}}</td><td>{{printf "%.4f" .Value}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

type reportRow struct {
	Name  string
	Value float64
}

// Render formats m as text, html or json. Unknown formats render as text.
func Render(m Metrics, format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal metrics: %w", err)
		}
		return string(data), nil
	case FormatHTML:
		return renderHTML(m)
	default:
		return renderText(m), nil
	}
}

func renderText(m Metrics) string {
	var b strings.Builder
	b.WriteString(banner + "\nEVALUATION DASHBOARD REPORT\n" + banner + "\n\n")

	section := func(title, label string, a AtK) {
		b.WriteString(title + ":\n")
		for _, k := range a.Keys() {
			fmt.Fprintf(&b, "  %s@%d: %.4f\n", label, k, a[k])
		}
		b.WriteString("\n")
	}
	section("Normalized Discounted Cumulative Gain (nDCG)", "nDCG", m.NDCG)
	section("Precision", "Precision", m.Precision)
	section("Recall", "Recall", m.Recall)

	fmt.Fprintf(&b, "Diversity Score: %.4f\n", m.Diversity)
	fmt.Fprintf(&b, "Fairness Index: %.4f\n", m.FairnessIndex)
	fmt.Fprintf(&b, "Coverage: %.4f\n\n", m.Coverage)
	b.WriteString(banner)
	return b.String()
}

func renderHTML(m Metrics) (string, error) {
	var rows []reportRow
	for _, s := range []struct {
		name string
		a    AtK
	}{
		{"NDCG", m.NDCG},
		{"PRECISION", m.Precision},
		{"RECALL", m.Recall},
		{"F1", m.F1},
	} {
		for _, k := range s.a.Keys() {
			rows = append(rows, reportRow{Name: fmt.Sprintf("%s@%d", s.name, k), Value: s.a[k]})
		}
	}
	rows = append(rows,
		reportRow{Name: "Diversity", Value: m.Diversity},
		reportRow{Name: "Fairness", Value: m.FairnessIndex},
		reportRow{Name: "Coverage", Value: m.Coverage},
	)

	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, struct{ Rows []reportRow }{rows}); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return buf.String(), nil
}
