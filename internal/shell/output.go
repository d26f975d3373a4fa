package shell

import "strings"

// Tone names a color in the terminal palette.
type Tone string

const (
	ToneText    Tone = "text"
	ToneSubtext Tone = "subtext"
	ToneOverlay Tone = "overlay"
	ToneYellow  Tone = "yellow"
	ToneBlue    Tone = "blue"
	ToneGreen   Tone = "green"
	ToneRed     Tone = "red"
	ToneMauve   Tone = "mauve"
	TonePeach   Tone = "peach"
)

// Span is a run of styled text. Href makes it a link, Copy copies the link
// (or the text) to the clipboard on click and Fill pre-fills the prompt.
type Span struct {
	Text   string
	Tone   Tone
	Bold   bool
	Chip   bool
	Href   string
	NewTab bool
	Copy   bool
	Fill   string
}

type Line struct {
	Spans  []Span
	Indent int
	Bullet bool
}

type Kind string

const (
	KindLines Kind = "lines"
	KindPre   Kind = "pre"
	KindGame  Kind = "game"
)

// Output is a renderable block attached to a history entry.
type Output struct {
	Kind    Kind
	Banners []string
	Lines   []Line
}

// WithBanners returns a copy of o with achievement banners shown above it.
func (o *Output) WithBanners(labels ...string) *Output {
	if o == nil || len(labels) == 0 {
		return o
	}
	out := *o
	out.Banners = append(append([]string(nil), o.Banners...), labels...)
	return &out
}

// PlainText flattens the output, one line per Line.
func (o *Output) PlainText() string {
	if o == nil {
		return ""
	}
	var b strings.Builder
	for _, label := range o.Banners {
		b.WriteString("achievement unlocked: ")
		b.WriteString(label)
		b.WriteByte('\n')
	}
	for _, l := range o.Lines {
		b.WriteString(strings.Repeat("  ", l.Indent))
		if l.Bullet {
			b.WriteString("• ")
		}
		for i, s := range l.Spans {
			if s.Chip && i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(s.Text)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func span(tone Tone, text string) Span {
	return Span{Text: text, Tone: tone}
}

func line(spans ...Span) Line {
	return Line{Spans: spans}
}

func textLine(tone Tone, text string) Line {
	return line(span(tone, text))
}

func lines(ls ...Line) *Output {
	return &Output{Kind: KindLines, Lines: ls}
}

func pre(text string, tone Tone) *Output {
	out := &Output{Kind: KindPre}
	for _, l := range strings.Split(text, "\n") {
		out.Lines = append(out.Lines, textLine(tone, l))
	}
	return out
}
