package render

import (
	"html/template"
	"strings"
)

// pageTemplate is shared by every list family: converters produce sections of
// labelled rows and the page lays them out. html/template gives contextual
// escaping, so payload values can never inject markup into the output.
var pageTemplate = template.Must(template.New("list").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Venue}}<h2>{{.Venue}}</h2>{{end}}
{{if .ContentDate}}<p>{{.ListForLabel}} {{.ContentDate}}</p>{{end}}
{{if .Published}}<p>{{.PublishedLabel}} {{.Published}}</p>{{end}}
{{if .Empty}}<p>{{.NoHearingsLabel}}</p>{{end}}
{{range .Sections}}
{{if .Name}}<h3>{{.Name}}</h3>{{end}}
{{range .Rows}}<table>
{{range .}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>
{{end}}</table>
{{end}}{{end}}
</body>
</html>
`))

type pageData struct {
	Title           string
	Venue           string
	ContentDate     string
	Published       string
	ListForLabel    string
	PublishedLabel  string
	NoHearingsLabel string
	Empty           bool
	Sections        []Section
}

// renderPage assembles the HTML for a summary. Metadata fields that are
// absent are simply left off the page.
func renderPage(title string, summary Summary, meta Metadata, labels Bundle) (string, error) {
	empty := true
	for _, s := range summary.Sections {
		if len(s.Rows) > 0 {
			empty = false
			break
		}
	}

	data := pageData{
		Title:           title,
		Venue:           meta["location-name"],
		ContentDate:     meta["content-date"],
		Published:       meta["published-at"],
		ListForLabel:    labels["list-for"],
		PublishedLabel:  labels["published"],
		NoHearingsLabel: labels["no-hearings"],
		Empty:           empty,
		Sections:        summary.Sections,
	}

	var sb strings.Builder
	if err := pageTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
