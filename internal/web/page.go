package web

import (
	"html/template"
	"io"
	"strings"

	"github.com/Ashfaaq98/console-cases/internal/browser"
	"github.com/Ashfaaq98/console-cases/internal/render"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Data Manipulation Cases</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 0 auto; padding: 1rem; }
.case-item { border-bottom: 1px solid #ddd; padding: .75rem 0; }
.tag { display: inline-block; background: #eef; border-radius: .25rem; padding: 0 .4rem; margin-right: .25rem; font-size: .85em; }
.meta { color: #666; font-size: .85em; }
.flash { background: #efe; padding: .5rem; }
.error { color: #a00; }
</style>
</head>
<body>
<h1>Data Manipulation Cases</h1>
{{if .Flash}}<p class="flash" role="status">{{.Flash}}</p>{{end}}
<form method="get" action="/" role="search">
<input type="search" id="search" name="q" value="{{.Query}}" placeholder="Search by company, description or type">
<button type="submit">Search</button>
<a id="clear-search" href="/">Clear</a>
</form>
<p id="case-count">{{.CountLabel}}</p>
<div id="loader"{{if not .Loading}} hidden{{end}}>Loading cases...</div>
<div id="case-list">{{.CaseList}}</div>
<p id="no-results"{{if not .NoResults}} hidden{{end}}>{{.NoResultsMessage}}</p>
<h2>Add a case</h2>
<form id="new-case-form" method="post" action="/cases">
<input type="hidden" name="q" value="{{.Query}}">
<label>Company <input id="new-company" name="new-company" value="{{.Form.Company}}"></label>
<label>Description <textarea id="new-description" name="new-description">{{.Form.Description}}</textarea></label>
<label>Source URL <input id="new-source-url" name="new-source-url" value="{{.Form.SourceURL}}"></label>
<label>Manipulation type <input id="new-manipulation-type" name="new-manipulation-type" value="{{.Form.ManipulationType}}" placeholder="comma, separated"></label>
<button type="submit">Add case</button>
</form>
</body>
</html>
`))

type pageData struct {
	Query            string
	CountLabel       string
	Loading          bool
	NoResults        bool
	NoResultsMessage string
	Flash            string
	CaseList         template.HTML
	Form             formValues
}

// writePage renders the full page. Case fields in st.View are already
// HTML-escaped by the session sanitizer, so the case list is assembled as
// trusted markup and everything else goes through template escaping.
func writePage(w io.Writer, st pageState) error {
	data := pageData{
		Query:            st.Query,
		CountLabel:       st.View.CountLabel,
		Loading:          st.Loading,
		NoResultsMessage: browser.NoResultsMessage,
		Flash:            st.Flash,
		Form:             st.Form,
	}
	switch {
	case st.Error != "":
		data.CountLabel = ""
		data.CaseList = template.HTML(`<p class="error">` + template.HTMLEscapeString(st.Error) + `</p>`)
	case st.Loading:
		data.CountLabel = ""
	default:
		data.NoResults = st.View.NoResults
		data.CaseList = template.HTML(caseListHTML(st.View.Items))
	}
	return pageTemplate.Execute(w, data)
}

func caseListHTML(items []render.Item) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(`<article class="case-item"><h3>`)
		b.WriteString(it.Company)
		b.WriteString(`</h3><p>`)
		b.WriteString(it.Description)
		b.WriteString(`</p><p class="tags">`)
		for _, tag := range it.Tags {
			b.WriteString(`<span class="tag">`)
			b.WriteString(tag)
			b.WriteString(`</span>`)
		}
		b.WriteString(`</p><p class="meta">Reported: `)
		b.WriteString(it.ReportedDate)
		b.WriteString(` &middot; <a href="`)
		b.WriteString(it.Source.Href)
		b.WriteString(`" target="`)
		b.WriteString(template.HTMLEscapeString(it.Source.Target))
		b.WriteString(`" rel="`)
		b.WriteString(template.HTMLEscapeString(it.Source.Rel))
		b.WriteString(`">`)
		b.WriteString(template.HTMLEscapeString(it.Source.Text))
		b.WriteString(`</a></p></article>`)
	}
	return b.String()
}
