package internal

import (
	"html/template"
	"io"

	"github.com/lychee-technology/listmeta"
)

const listPageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- range .Tags}}
<meta {{attr .Kind}}="{{.Key}}" content="{{.Value}}">
{{- end}}
</head>
<body>
<h1>{{.Title}}</h1>
<div class="introduction">{{.Introduction}}</div>
</body>
</html>
`

var pageTemplate = template.Must(template.New("list").Funcs(template.FuncMap{
	"attr": metaAttr,
}).Parse(listPageTemplate))

// metaAttr returns the attribute name for kind. Unknown kinds fall back to
// "name" so a stray kind cannot inject an arbitrary attribute.
func metaAttr(kind listmeta.AttributeKind) template.HTMLAttr {
	if !kind.Valid() {
		return template.HTMLAttr(listmeta.AttributeName)
	}
	return template.HTMLAttr(kind)
}

type listPageData struct {
	Title        string
	Introduction string
	Tags         []listmeta.MetaTag
}

// RenderListPage writes a minimal HTML page for record whose head carries the
// tags of set. Title and introduction come from og:title and og:description
// when set has them, so the page shows the same text previewers do. All
// values are escaped by html/template.
func RenderListPage(w io.Writer, record listmeta.ListRecord, set *listmeta.MetadataSet) error {
	return pageTemplate.Execute(w, listPageData{
		Title:        tagOr(set, listmeta.KeyOGTitle, record.Label),
		Introduction: tagOr(set, listmeta.KeyOGDescription, record.Introduction),
		Tags:         set.Tags(),
	})
}

func tagOr(set *listmeta.MetadataSet, key, fallback string) string {
	if tag, ok := set.Get(key); ok {
		return tag.Value
	}
	return fallback
}
