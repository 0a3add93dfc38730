package compose

import (
	"fmt"
	"html"
)

// Command identifies a rich-text formatting operation. The names follow
// the commands the browser editor issues.
type Command string

const (
	CmdBold        Command = "bold"
	CmdItalic      Command = "italic"
	CmdUnderline   Command = "underline"
	CmdAlignLeft   Command = "justifyLeft"
	CmdAlignCenter Command = "justifyCenter"
	CmdAlignRight  Command = "justifyRight"
	CmdFontName    Command = "fontName"
	CmdFontSize    Command = "fontSize"
	CmdForeColor   Command = "foreColor"
	CmdInsertHTML  Command = "insertHTML"
	CmdCreateLink  Command = "createLink"
)

// Editor abstracts the rich-text surface backing the compose body. The
// browser client implements it over a content-editable element; MarkupEditor
// below is the server-side document model used for drafts and tests.
type Editor interface {
	Content() string
	SetContent(markup string)
	Apply(cmd Command, value string) error
}

// MarkupEditor is a structured, non-DOM Editor. Without a cursor or
// selection, wrapping commands apply to the whole document and insertion
// commands append at the end.
type MarkupEditor struct {
	content  string
	font     string
	fontSize string
	color    string
}

// NewMarkupEditor creates an editor with the panel's default typography.
func NewMarkupEditor() *MarkupEditor {
	return &MarkupEditor{
		font:     "Arial",
		fontSize: "14px",
		color:    "#000000",
	}
}

// Content returns the current markup.
func (e *MarkupEditor) Content() string { return e.content }

// SetContent replaces the whole document.
func (e *MarkupEditor) SetContent(markup string) { e.content = markup }

// Font returns the last applied font family.
func (e *MarkupEditor) Font() string { return e.font }

// FontSize returns the last applied font size.
func (e *MarkupEditor) FontSize() string { return e.fontSize }

// Color returns the last applied text color.
func (e *MarkupEditor) Color() string { return e.color }

// Apply executes a formatting command against the document.
func (e *MarkupEditor) Apply(cmd Command, value string) error {
	switch cmd {
	case CmdBold:
		e.content = "<strong>" + e.content + "</strong>"
	case CmdItalic:
		e.content = "<em>" + e.content + "</em>"
	case CmdUnderline:
		e.content = "<u>" + e.content + "</u>"
	case CmdAlignLeft:
		e.wrapAlign("left")
	case CmdAlignCenter:
		e.wrapAlign("center")
	case CmdAlignRight:
		e.wrapAlign("right")
	case CmdFontName:
		e.font = value
		e.content = fmt.Sprintf(`<span style="font-family: %s;">%s</span>`, value, e.content)
	case CmdFontSize:
		e.fontSize = value
		e.content = fmt.Sprintf(`<span style="font-size: %s;">%s</span>`, value, e.content)
	case CmdForeColor:
		e.color = value
		e.content = fmt.Sprintf(`<span style="color: %s;">%s</span>`, value, e.content)
	case CmdInsertHTML:
		e.content += value
	case CmdCreateLink:
		e.content += fmt.Sprintf(`<a href="%s">%s</a>`, value, html.EscapeString(value))
	default:
		return fmt.Errorf("unknown editor command: %s", cmd)
	}
	return nil
}

// wrapAlign wraps the whole document in a block with the given text alignment.
func (e *MarkupEditor) wrapAlign(align string) {
	e.content = fmt.Sprintf(`<div style="text-align: %s;">%s</div>`, align, e.content)
}

// InsertLink appends an anchor with explicit link text, falling back to the
// URL itself when the text is empty.
func (e *MarkupEditor) InsertLink(url, text string) {
	if text == "" {
		text = url
	}
	e.content += fmt.Sprintf(`<a href="%s" style="color: #3b82f6; text-decoration: underline;">%s</a>`, url, html.EscapeString(text))
}
