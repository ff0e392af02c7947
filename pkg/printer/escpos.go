package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS command bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Character size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // double width + double height
)

// Most receipt printers ship without a glyph for the peso sign.
var asciiReplacer = strings.NewReplacer("₱", "P", "ñ", "n", "Ñ", "N", "–", "-", "—", "-")

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf   bytes.Buffer
	width int // characters per line: 32 for 58mm paper, 48 for 80mm
}

// NewDocument creates a new ESC/POS document with the given character width.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = 32
	}
	d := &Document{width: charWidth}
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// Width returns the characters per line.
func (d *Document) Width() int {
	return d.width
}

func (d *Document) write(s string) {
	d.buf.WriteString(asciiReplacer.Replace(s))
}

// LineFeed sends a line feed.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// SetAlign sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

// SetBold enables or disables bold text.
func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

// SetFontSize sets the character size.
func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.write(s)
	d.buf.WriteByte(LF)
	return d
}

// TextF writes a formatted line of text followed by a line feed.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Wrapped writes s word-wrapped to the line width, each line prefixed with indent.
func (d *Document) Wrapped(indent, s string) *Document {
	for _, line := range wrap(s, d.width-utf8.RuneCountInString(indent)) {
		d.Text(indent + line)
	}
	return d
}

// Separator prints a full-width separator line.
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints a left-aligned key and right-aligned value on the same line.
func (d *Document) KeyValue(key, value string) *Document {
	d.write(key)
	d.buf.WriteString(strings.Repeat(" ", d.gap(key, value)))
	d.write(value)
	d.buf.WriteByte(LF)
	return d
}

// ItemLine prints "qty x name" with a right-aligned total. Long names wrap
// onto following lines so the amount column stays aligned.
func (d *Document) ItemLine(qty int, name, total string) *Document {
	prefix := fmt.Sprintf("%dx ", qty)
	room := d.width - utf8.RuneCountInString(prefix) - utf8.RuneCountInString(total) - 1
	lines := wrap(name, room)
	if len(lines) == 0 {
		lines = []string{""}
	}

	first := prefix + lines[0]
	d.KeyValue(first, total)
	pad := strings.Repeat(" ", utf8.RuneCountInString(prefix))
	for _, line := range lines[1:] {
		d.Text(pad + line)
	}
	return d
}

// PartialCut sends the partial cut command.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func (d *Document) gap(key, value string) int {
	spaces := d.width - utf8.RuneCountInString(key) - utf8.RuneCountInString(value)
	if spaces < 1 {
		spaces = 1
	}
	return spaces
}

func wrap(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	var cur strings.Builder
	curLen := 0
	for _, word := range strings.Fields(s) {
		wlen := utf8.RuneCountInString(word)
		switch {
		case curLen == 0:
		case curLen+1+wlen <= width:
			cur.WriteByte(' ')
			curLen++
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
		cur.WriteString(word)
		curLen += wlen
	}
	if curLen > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
