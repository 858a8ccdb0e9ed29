// Package templates renders the table viewer's HTML. Markup lives in
// embedded safehtml templates; each view is exposed as a templ component.
package templates

import (
	"context"
	"embed"
	"io"

	"github.com/a-h/templ"
	"github.com/google/safehtml/template"
)

//go:embed html/*.html
var templateFS embed.FS

var views = template.Must(template.New("views").ParseFS(template.TrustedFSFromEmbed(templateFS), "html/*.html"))

// component executes the named template with data when rendered.
func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return views.ExecuteTemplate(w, name, data)
	})
}
