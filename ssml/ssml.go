package ssml

import (
	"bufio"
	"io"
	"strings"
)

type Node interface {
	markup(w *bufio.Writer) error
	write(w *bufio.Writer) error
}

type ParentNode interface {
	AddNode(node Node)
	AddNodes(node ...Node)
}

type SSML struct {
	Nodes []Node
}

func New() *SSML {
	return &SSML{}
}

var (
	_ Node       = (*SSML)(nil)
	_ ParentNode = (*SSML)(nil)
)

func (ssml *SSML) AddNode(node Node) {
	ssml.Nodes = append(ssml.Nodes, node)
}

func (ssml *SSML) AddNodes(nodes ...Node) {
	ssml.Nodes = append(ssml.Nodes, nodes...)
}

// WriteSSML writes the markup document to w. Character data and attribute
// values are escaped with named entities only.
func (ssml *SSML) WriteSSML(w io.Writer) error {
	return writeBuffered(w, ssml.markup)
}

// WriteText writes the plain text content of the document to w, without
// any markup or escaping.
func (ssml *SSML) WriteText(w io.Writer) error {
	return writeBuffered(w, ssml.write)
}

func writeBuffered(w io.Writer, f func(w *bufio.Writer) error) error {
	var bw *bufio.Writer
	if ww, ok := w.(*bufio.Writer); ok {
		bw = ww
	} else {
		bw = bufio.NewWriter(w)
	}

	err := f(bw)
	if err != nil {
		return err
	}

	err = bw.Flush()
	if err != nil {
		return err
	}

	return nil
}

func (ssml *SSML) ToSSML() string {
	var s strings.Builder
	err := ssml.WriteSSML(&s)
	if err != nil {
		panic("bug: " + err.Error())
	}
	return s.String()
}

func (ssml *SSML) ToText() string {
	var s strings.Builder
	err := ssml.WriteText(&s)
	if err != nil {
		panic("bug: " + err.Error())
	}
	return s.String()
}

// MarkupSize returns the number of bytes node takes in a markup document.
func MarkupSize(node Node) int {
	var cw countWriter
	bw := bufio.NewWriter(&cw)
	// countWriter never fails
	_ = node.markup(bw)
	_ = bw.Flush()
	return cw.n
}

type countWriter struct {
	n int
}

func (cw *countWriter) Write(p []byte) (int, error) {
	cw.n += len(p)
	return len(p), nil
}

const (
	speakName    = "speak"
	voiceName    = "voice"
	langName     = "lang"
	prosodyName  = "prosody"
	emphasisName = "emphasis"
)

type attr struct {
	name  string
	value string
}

func writeElement(w *bufio.Writer, name string, attrs []attr, nodes []Node) error {
	w.WriteByte('<')
	w.WriteString(name)
	for _, a := range attrs {
		w.WriteByte(' ')
		w.WriteString(a.name)
		w.WriteString(`="`)
		if err := writeEscaped(w, a.value); err != nil {
			return err
		}
		w.WriteByte('"')
	}
	w.WriteByte('>')

	for _, node := range nodes {
		err := node.markup(w)
		if err != nil {
			return err
		}
	}

	w.WriteString("</")
	w.WriteString(name)
	_, err := w.WriteString(">")
	return err
}

func writeNodes(w *bufio.Writer, nodes []Node) error {
	for _, node := range nodes {
		err := node.write(w)
		if err != nil {
			return err
		}
	}

	return nil
}

func (ssml *SSML) markup(w *bufio.Writer) error {
	return writeElement(w, speakName, nil, ssml.Nodes)
}

func (ssml *SSML) write(w *bufio.Writer) error {
	return writeNodes(w, ssml.Nodes)
}

// Voice selects a named synthesis voice for its content.
type Voice struct {
	Name  string
	Nodes []Node
}

var (
	_ Node       = (*Voice)(nil)
	_ ParentNode = (*Voice)(nil)
)

func (v *Voice) AddNode(node Node) {
	v.Nodes = append(v.Nodes, node)
}

func (v *Voice) AddNodes(nodes ...Node) {
	v.Nodes = append(v.Nodes, nodes...)
}

func (v *Voice) markup(w *bufio.Writer) error {
	return writeElement(w, voiceName, []attr{{name: "name", value: v.Name}}, v.Nodes)
}

func (v *Voice) write(w *bufio.Writer) error {
	return writeNodes(w, v.Nodes)
}

// Lang marks its content as spoken in the given language tag, e.g. "en-US".
type Lang struct {
	Lang  string
	Nodes []Node
}

var (
	_ Node       = (*Lang)(nil)
	_ ParentNode = (*Lang)(nil)
)

func (l *Lang) AddNode(node Node) {
	l.Nodes = append(l.Nodes, node)
}

func (l *Lang) AddNodes(nodes ...Node) {
	l.Nodes = append(l.Nodes, nodes...)
}

func (l *Lang) markup(w *bufio.Writer) error {
	return writeElement(w, langName, []attr{{name: "xml:lang", value: l.Lang}}, l.Nodes)
}

func (l *Lang) write(w *bufio.Writer) error {
	return writeNodes(w, l.Nodes)
}

// Prosody changes the rate and pitch of its content. Empty attributes are
// not written. Use Percent and SignedPercent to build the values.
type Prosody struct {
	Rate  string
	Pitch string
	Nodes []Node
}

var (
	_ Node       = (*Prosody)(nil)
	_ ParentNode = (*Prosody)(nil)
)

func (p *Prosody) AddNode(node Node) {
	p.Nodes = append(p.Nodes, node)
}

func (p *Prosody) AddNodes(nodes ...Node) {
	p.Nodes = append(p.Nodes, nodes...)
}

func (p *Prosody) markup(w *bufio.Writer) error {
	return writeElement(w, prosodyName, p.attrs(), p.Nodes)
}

func (p *Prosody) write(w *bufio.Writer) error {
	return writeNodes(w, p.Nodes)
}

func (p *Prosody) attrs() []attr {
	attrs := make([]attr, 0, 2)
	if p.Rate != "" {
		attrs = append(attrs, attr{name: "rate", value: p.Rate})
	}
	if p.Pitch != "" {
		attrs = append(attrs, attr{name: "pitch", value: p.Pitch})
	}
	return attrs
}

type EmphasisLevel string

const (
	Strong   EmphasisLevel = "strong"
	Moderate EmphasisLevel = "moderate"
	None     EmphasisLevel = "none"
	Reduced  EmphasisLevel = "reduced"
)

type Emphasis struct {
	Level EmphasisLevel
	Nodes []Node
}

var (
	_ Node       = (*Emphasis)(nil)
	_ ParentNode = (*Emphasis)(nil)
)

func (e *Emphasis) AddNode(node Node) {
	e.Nodes = append(e.Nodes, node)
}

func (e *Emphasis) AddNodes(nodes ...Node) {
	e.Nodes = append(e.Nodes, nodes...)
}

func (e *Emphasis) markup(w *bufio.Writer) error {
	var attrs []attr
	if e.Level != "" {
		attrs = []attr{{name: "level", value: string(e.Level)}}
	}
	return writeElement(w, emphasisName, attrs, e.Nodes)
}

func (e *Emphasis) write(w *bufio.Writer) error {
	return writeNodes(w, e.Nodes)
}

type Text string

var _ Node = Text("")

func (t Text) markup(w *bufio.Writer) error {
	return writeEscaped(w, string(t))
}

func (t Text) write(w *bufio.Writer) error {
	_, err := w.WriteString(string(t))
	if err != nil {
		return err
	}
	return nil
}
