// Package outline renders form trees and row-editor expansions as styled
// terminal outlines.
package outline

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/goliatone/go-formtree/pkg/grid"
	"github.com/goliatone/go-formtree/pkg/tree"
)

// Option customises a Printer.
type Option func(*Printer)

// WithColor forces colour on or off. By default the terminal decides.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		if !enabled {
			p.renderer.SetColorProfile(termenv.Ascii)
		} else if p.renderer.ColorProfile() == termenv.Ascii {
			p.renderer.SetColorProfile(termenv.ANSI256)
		}
	}
}

// WithIDs toggles node ids next to labels.
func WithIDs(show bool) Option {
	return func(p *Printer) {
		p.showIDs = show
	}
}

// Printer renders outlines for one output.
type Printer struct {
	renderer *lipgloss.Renderer
	showIDs  bool

	title lipgloss.Style
	kind  lipgloss.Style
	label lipgloss.Style
	muted lipgloss.Style
	warn  lipgloss.Style
	tab   lipgloss.Style
}

// New returns a Printer whose colour profile follows w.
func New(w io.Writer, opts ...Option) *Printer {
	r := lipgloss.NewRenderer(w)
	p := &Printer{renderer: r, showIDs: true}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.title = r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5f9fb0"))
	p.kind = r.NewStyle().Foreground(lipgloss.Color("#d16d7a"))
	p.label = r.NewStyle().Bold(true)
	p.muted = r.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	p.warn = r.NewStyle().Foreground(lipgloss.Color("#f39c12")).Bold(true)
	p.tab = r.NewStyle().Italic(true).Foreground(lipgloss.Color("#5f9fb0"))
	return p
}

type entry struct {
	text     string
	children []entry
}

// Document renders the document name followed by its component tree.
func (p *Printer) Document(doc tree.Document) string {
	header := p.title.Render(doc.Name)
	if doc.Code != "" {
		header += " " + p.muted.Render("("+doc.Code+")")
	}
	entries := make([]entry, 0, len(doc.Components))
	for _, n := range doc.Components {
		entries = append(entries, p.nodeEntry(n))
	}
	if len(entries) == 0 {
		entries = append(entries, entry{text: p.muted.Render("(empty)")})
	}
	return render(header, entries)
}

func (p *Printer) nodeEntry(n *tree.Node) entry {
	parts := []string{p.kind.Render("[" + string(n.Kind) + "]")}
	if label := n.Label(); label != "" {
		parts = append(parts, p.label.Render(label))
	}
	if p.showIDs {
		parts = append(parts, p.muted.Render(n.ID))
	}
	if n.Props.Bool(tree.PropRequired) {
		parts = append(parts, p.warn.Render("*"))
	}
	parts = append(parts, p.details(n)...)
	e := entry{text: strings.Join(parts, " ")}

	switch {
	case n.Kind == tree.KindTabs:
		for _, tab := range n.Tabs {
			if tab == nil {
				continue
			}
			te := entry{text: p.tab.Render("tab " + tab.Label)}
			if p.showIDs {
				te.text += " " + p.muted.Render(tab.ID)
			}
			for _, child := range tab.Children {
				te.children = append(te.children, p.nodeEntry(child))
			}
			e.children = append(e.children, te)
		}
	case n.Kind.HasChildList():
		for _, child := range n.Children {
			e.children = append(e.children, p.nodeEntry(child))
		}
	}
	return e
}

func (p *Printer) details(n *tree.Node) []string {
	var out []string
	switch n.Kind {
	case tree.KindRow:
		if cols, ok := n.Props.Int(tree.PropColumns); ok {
			out = append(out, p.muted.Render(fmt.Sprintf("%d cols", cols)))
		}
	case tree.KindSelect, tree.KindRadio:
		if opts := n.Options(); len(opts) > 0 {
			out = append(out, p.muted.Render(fmt.Sprintf("%d options", len(opts))))
		}
	case tree.KindComputed:
		script := strings.Join(strings.Fields(n.Props.String(tree.PropComputeScript)), " ")
		if len(script) > 40 {
			script = script[:37] + "..."
		}
		out = append(out, p.muted.Render("= "+script))
	case tree.KindGrid:
		cfg := grid.ConfigOf(n)
		ids := make([]string, 0, len(cfg.Columns))
		for _, c := range cfg.Columns {
			ids = append(ids, c.ID)
		}
		out = append(out, p.muted.Render("columns: "+strings.Join(ids, ", ")))
		if cfg.RowEditorFormID != "" {
			out = append(out, p.muted.Render("-> "+cfg.RowEditorFormID))
		}
	}
	return out
}

// Expansion renders a row-editor expansion rooted at root.
func (p *Printer) Expansion(root *grid.FormNode) string {
	if root == nil {
		return ""
	}
	var children []entry
	for _, c := range root.Children {
		children = append(children, p.formEntry(c))
	}
	return render(p.formText(root), children)
}

func (p *Printer) formEntry(n *grid.FormNode) entry {
	e := entry{text: p.formText(n)}
	for _, c := range n.Children {
		e.children = append(e.children, p.formEntry(c))
	}
	return e
}

func (p *Printer) formText(n *grid.FormNode) string {
	name := n.Name
	if name == "" {
		name = n.FormID
	}
	text := p.label.Render(name) + " " + p.muted.Render(n.FormID)
	if n.GridID != "" {
		text += " " + p.muted.Render("via "+n.GridID)
	}
	switch {
	case n.Cycle:
		text += " " + p.warn.Render("(cycle)")
	case n.Missing:
		text += " " + p.warn.Render("(missing)")
	}
	return text
}

func render(header string, entries []entry) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	writeEntries(&b, entries, "")
	return b.String()
}

func writeEntries(b *strings.Builder, entries []entry, prefix string) {
	for i, e := range entries {
		branch, next := "├── ", "│   "
		if i == len(entries)-1 {
			branch, next = "└── ", "    "
		}
		b.WriteString(prefix)
		b.WriteString(branch)
		b.WriteString(e.text)
		b.WriteByte('\n')
		writeEntries(b, e.children, prefix+next)
	}
}
