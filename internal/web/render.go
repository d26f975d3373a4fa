package web

import (
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Zachkp/zach-term/internal/shell"
)

// Prompt is the text shown before every command.
const Prompt = "visitor@zach-term:~$"

var templateFuncs = template.FuncMap{
	"prompt":    func() string { return Prompt },
	"spanClass": spanClass,
	"copyText":  copyText,
	"ago":       humanize.Time,
	"comma":     func(n int64) string { return humanize.Comma(n) },
	"date":      func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"isGame":    func(o *shell.Output) bool { return o != nil && o.Kind == shell.KindGame },
	"isPre":     func(o *shell.Output) bool { return o != nil && o.Kind == shell.KindPre },
	"percent":   func(f float64) string { return humanize.FtoaWithDigits(f, 1) + "%" },
	"repeat":    strings.Repeat,
}

// copyText is what a copy span puts on the clipboard: the bare address
// for mailto links, the link otherwise.
func copyText(s shell.Span) string {
	if addr, ok := strings.CutPrefix(s.Href, "mailto:"); ok {
		return addr
	}
	return s.Href
}

func spanClass(s shell.Span) string {
	classes := []string{"tone-" + string(s.Tone)}
	if s.Tone == "" {
		classes[0] = "tone-text"
	}
	if s.Bold {
		classes = append(classes, "bold")
	}
	if s.Chip {
		classes = append(classes, "chip")
	}
	if s.Copy {
		classes = append(classes, "copy")
	}
	if s.Fill != "" {
		classes = append(classes, "fill")
	}
	return strings.Join(classes, " ")
}
