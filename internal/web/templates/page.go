package templates

import (
	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/a-h/templ"
)

// PageParams holds what the full page needs beyond the table.
type PageParams struct {
	View          core.View
	ImportEnabled bool
	MaxFileSize   int64
}

type pageModel struct {
	ImportEnabled bool
	MaxFileSize   int64
	Global        string
	Table         tableModel
}

// Page renders the full document around the table fragment.
func Page(p PageParams) templ.Component {
	return component("page", pageModel{
		ImportEnabled: p.ImportEnabled,
		MaxFileSize:   p.MaxFileSize,
		Global:        p.View.Global,
		Table:         newTableModel(p.View),
	})
}

type alertModel struct {
	Message string
	Action  string
	Code    string
}

// ErrorAlert renders an error banner with the suggested action and the
// support code.
func ErrorAlert(message, action, code string) templ.Component {
	return component("alert", alertModel{Message: message, Action: action, Code: code})
}
