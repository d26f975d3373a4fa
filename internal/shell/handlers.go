package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zachkp/zach-term/internal/content"
)

// call is one Execute invocation as seen by a handler.
type call struct {
	raw       string
	clean     string
	effective string
	id        string
	now       time.Time
}

type handler func(s *Session, c *call) Result

// registry is the closed command table. Handlers run with the session lock held.
var registry = map[string]handler{
	"":           (*Session).empty,
	"welcome":    (*Session).welcomeCmd,
	"help":       (*Session).help,
	"ls":         (*Session).help,
	"about":      (*Session).about,
	"experience": (*Session).experience,
	"skills":     (*Session).experience,
	"projects":   (*Session).projects,
	"blog":       (*Session).blog,
	"writing":    (*Session).blog,
	"contact":    (*Session).contact,
	"email":      (*Session).useContact,
	"socials":    (*Session).useContact,
	"resume":     (*Session).resume,
	"pong":       (*Session).pong,
	"history":    (*Session).historyCmd,
	"whoami":     (*Session).whoami,
	"pwd":        (*Session).pwd,
	"clear":      (*Session).clear,
	"q":          (*Session).clear,
	"cowsay":     (*Session).cowsay,
}

const chosenOneOdds = 200

func (s *Session) empty(*call) Result {
	return Result{}
}

func (s *Session) welcome(prompt string) *Output {
	p := s.site.Profile
	out := pre(strings.Trim(asciiArt, "\n"), ToneMauve)
	out.Kind = KindLines
	out.Lines = append(out.Lines,
		line(),
		line(span(ToneText, p.Name), span(ToneOverlay, " · "), span(ToneSubtext, p.Title)),
		textLine(ToneOverlay, statusLines[s.rng.Intn(len(statusLines))]),
		line(),
		textLine(ToneYellow, prompt),
	)
	for _, h := range commandHints {
		out.Lines = append(out.Lines, Line{
			Indent: 1,
			Spans: []Span{
				{Text: h.command, Tone: ToneBlue, Chip: true, Fill: h.command},
				span(ToneOverlay, "  → "+h.hint),
			},
		})
	}
	out.Lines = append(out.Lines, line(), line(
		span(ToneSubtext, "Type "),
		Span{Text: "help", Tone: ToneBlue, Fill: "help"},
		span(ToneSubtext, " for everything else."),
	))
	return out
}

func (s *Session) welcomeCmd(*call) Result {
	return Result{Output: s.welcome("Pick your route:")}
}

func (s *Session) help(*call) Result {
	out := lines(textLine(ToneYellow, "Available commands:"))
	for _, cmd := range Commands {
		out.Lines = append(out.Lines, Line{Indent: 1, Spans: []Span{
			{Text: cmd, Tone: ToneBlue, Chip: true, Fill: cmd},
		}})
	}
	out.Lines = append(out.Lines, line(), textLine(ToneOverlay, "Tab completes · ↑/↓ history · Ctrl+L clears"))
	if s.rng.Intn(chosenOneOdds) == 0 {
		out.Lines = append(out.Lines, textLine(ToneMauve, "you are the chosen one."))
	}
	return Result{Output: out}
}

func (s *Session) manpage() Result {
	text := `HELP(1)                     Portfolio Manual                     HELP(1)

NAME
    help - list the commands this terminal understands

SYNOPSIS
    help
    help help

DESCRIPTION
    Prints every command. Typing help about help opens this page,
    which you have now read. Congratulations.

SEE ALSO
    about(1), projects(1), resume(1), pong(6)`
	return Result{Output: pre(text, ToneSubtext)}
}

func (s *Session) about(*call) Result {
	p := s.site.Profile
	out := lines(
		line(Span{Text: p.Name, Tone: ToneText, Bold: true}),
		textLine(ToneBlue, p.Title),
	)
	if p.Location != "" {
		out.Lines = append(out.Lines, textLine(ToneOverlay, p.Location))
	}
	if p.Tagline != "" {
		out.Lines = append(out.Lines, textLine(ToneSubtext, p.Tagline))
	}
	if about := strings.Join(strings.Fields(p.About), " "); about != "" {
		out.Lines = append(out.Lines, line(), textLine(ToneText, about))
	}
	return Result{Output: out}
}

func (s *Session) experience(*call) Result {
	p := s.site.Profile
	out := lines(textLine(ToneYellow, "Skills"))
	chips := Line{Indent: 1}
	for _, skill := range p.Skills {
		chips.Spans = append(chips.Spans, Span{Text: skill, Tone: TonePeach, Chip: true})
	}
	out.Lines = append(out.Lines, chips, line(), textLine(ToneYellow, "Experience"))
	for _, e := range p.Experience {
		out.Lines = append(out.Lines, experienceHeader(e.Role, e.Company, e.Period)...)
		for _, h := range e.Highlights {
			out.Lines = append(out.Lines, Line{Indent: 2, Bullet: true, Spans: []Span{span(ToneSubtext, h)}})
		}
	}
	if len(p.Education) > 0 {
		out.Lines = append(out.Lines, line(), textLine(ToneYellow, "Education"))
		for _, e := range p.Education {
			out.Lines = append(out.Lines, experienceHeader(e.Degree, e.Institution, e.Period)...)
			for _, h := range e.Highlights {
				out.Lines = append(out.Lines, Line{Indent: 2, Bullet: true, Spans: []Span{span(ToneSubtext, h)}})
			}
		}
	}
	return Result{Output: out}
}

func experienceHeader(title, org, period string) []Line {
	return []Line{{Indent: 1, Spans: []Span{
		{Text: title, Tone: ToneText, Bold: true},
		span(ToneOverlay, " @ "),
		span(ToneBlue, org),
		span(ToneOverlay, "  "+period),
	}}}
}

func (s *Session) projects(c *call) Result {
	final := lines(textLine(ToneYellow, "Featured projects"))
	for _, p := range s.site.Projects {
		final.Lines = append(final.Lines, entryLines(p, "/projects/"+p.Slug, p.Stack)...)
	}
	return Result{Output: s.stageLocked(c.id, final, nil)}
}

func (s *Session) blog(c *call) Result {
	final := lines(textLine(ToneYellow, "Posts"))
	for _, p := range s.site.Posts {
		final.Lines = append(final.Lines, entryLines(p, "/blog/"+p.Slug, p.Tags)...)
	}
	final.Lines = append(final.Lines, line(), textLine(ToneOverlay, "opening /blog…"))
	out := s.stageLocked(c.id, final, func() []Event {
		s.effects = append(s.effects, Effect{Kind: EffectNavigate, Href: "/blog"})
		return []Event{{Kind: EventEffect, EntryID: c.id}}
	})
	return Result{Output: out}
}

func entryLines(e content.Entry, href string, tags []string) []Line {
	title := Line{Indent: 1, Spans: []Span{{Text: e.Title, Tone: ToneBlue, Bold: true, Href: href}}}
	if !e.Date.IsZero() {
		title.Spans = append(title.Spans, span(ToneOverlay, "  "+e.Date.Format("Jan 2006")))
	}
	out := []Line{title}
	if e.Description != "" {
		out = append(out, Line{Indent: 2, Spans: []Span{span(ToneSubtext, e.Description)}})
	}
	if len(tags) > 0 {
		chips := Line{Indent: 2}
		for _, t := range tags {
			chips.Spans = append(chips.Spans, Span{Text: t, Tone: TonePeach, Chip: true})
		}
		out = append(out, chips)
	}
	return out
}

func (s *Session) contact(*call) Result {
	p := s.site.Profile
	out := lines(
		textLine(ToneYellow, "Contact"),
		Line{Indent: 1, Spans: []Span{
			span(ToneOverlay, "email  "),
			{Text: p.Email, Tone: ToneBlue, Href: "mailto:" + p.Email, Copy: true},
		}},
	)
	for _, soc := range p.Socials {
		l := Line{Indent: 1, Spans: []Span{
			span(ToneOverlay, fmt.Sprintf("%-7s", strings.ToLower(soc.Name))),
			{Text: soc.URL, Tone: ToneBlue, Href: soc.URL, NewTab: soc.NewTab, Copy: !soc.NewTab},
		}}
		if soc.Note != "" {
			l.Spans = append(l.Spans, span(ToneOverlay, " "+soc.Note))
		}
		out.Lines = append(out.Lines, l)
	}
	out.Lines = append(out.Lines,
		Line{Indent: 1, Spans: []Span{
			span(ToneOverlay, "form   "),
			{Text: "/contact", Tone: ToneBlue, Href: "/contact"},
		}},
		line(),
		textLine(ToneOverlay, "click a link to copy it"),
	)
	return Result{Output: out}
}

func (s *Session) useContact(*call) Result {
	return Result{Output: lines(line(
		span(ToneSubtext, "Use "),
		Span{Text: "contact", Tone: ToneBlue, Fill: "contact"},
		span(ToneSubtext, "."),
	))}
}

func (s *Session) resume(*call) Result {
	return Result{
		Output: lines(line(
			span(ToneGreen, "opening "),
			Span{Text: "/resume.pdf", Tone: ToneBlue, Href: "/resume.pdf", NewTab: true},
			span(ToneGreen, " in a new tab…"),
		)),
		Effects: []Effect{{Kind: EffectOpenTab, Href: "/resume.pdf"}},
	}
}

func (s *Session) pong(c *call) Result {
	s.startGameLocked(c.id)
	return Result{Output: &Output{Kind: KindGame, Lines: []Line{
		textLine(ToneSubtext, "W/S or ↑/↓ move · P/Space pause · R restart · Esc/Q exit"),
	}}}
}

func (s *Session) historyCmd(*call) Result {
	out := lines()
	n := 0
	for _, e := range s.history {
		if e.ID == WelcomeID {
			continue
		}
		n++
		out.Lines = append(out.Lines, line(
			span(ToneOverlay, fmt.Sprintf("%4d  ", n)),
			span(ToneText, e.Command),
		))
	}
	if n == 0 {
		out.Lines = append(out.Lines, textLine(ToneOverlay, "no history yet"))
	}
	return Result{Output: out}
}

func (s *Session) whoami(*call) Result {
	return Result{Output: lines(textLine(ToneText, "visitor"))}
}

func (s *Session) pwd(*call) Result {
	return Result{Output: lines(textLine(ToneText, "/home/visitor"))}
}

func (s *Session) clear(*call) Result {
	s.history = nil
	return Result{SkipAppend: true}
}

// cowsay picks its quip by UTC day of year, so everyone sees the same cow today.
func (s *Session) cowsay(c *call) Result {
	quip := cowsayLines[(DayOfYear(c.now)-1)%len(cowsayLines)]
	return Result{Output: pre(Cowsay(quip), ToneText)}
}

func (s *Session) sudo() Result {
	return Result{Output: lines(textLine(ToneRed, "permission denied: you are not root here."))}
}

func (s *Session) unknown(c *call) Result {
	if guess := Suggest(c.clean); guess != "" {
		return Result{
			Outcome: OutcomeSuggested,
			Output: lines(line(
				span(ToneYellow, "Did you mean: "),
				Span{Text: guess, Tone: ToneBlue, Bold: true, Fill: guess},
				span(ToneYellow, " ? (press Enter)"),
			)),
			NextInput: guess,
		}
	}
	return Result{
		Outcome: OutcomeUnknown,
		Output: lines(
			textLine(ToneRed, "Unknown command: "+strings.TrimSpace(c.raw)),
			line(span(ToneSubtext, "Try: "), Span{Text: "help", Tone: ToneBlue, Fill: "help"}),
			textLine(ToneOverlay, roastLines[s.rng.Intn(len(roastLines))]),
		),
	}
}
