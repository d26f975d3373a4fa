package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Zachkp/zach-term/internal/pong"
	"github.com/Zachkp/zach-term/internal/shell"
)

// Prompt matches the web terminal's prompt.
const Prompt = "visitor@zach-term:~$"

var palette = map[shell.Tone]lipgloss.Color{
	shell.ToneText:    "#cdd6f4",
	shell.ToneSubtext: "#a6adc8",
	shell.ToneOverlay: "#6c7086",
	shell.ToneYellow:  "#f9e2af",
	shell.ToneBlue:    "#89b4fa",
	shell.ToneGreen:   "#a6e3a1",
	shell.ToneRed:     "#f38ba8",
	shell.ToneMauve:   "#cba6f7",
	shell.TonePeach:   "#fab387",
}

const surface = lipgloss.Color("#313244")

var (
	promptStyle = lipgloss.NewStyle().Foreground(palette[shell.ToneGreen])
	bannerStyle = lipgloss.NewStyle().Foreground(palette[shell.ToneMauve]).Bold(true)
	ghostStyle  = lipgloss.NewStyle().Foreground(palette[shell.ToneOverlay])
	statusStyle = lipgloss.NewStyle().Foreground(palette[shell.ToneBlue])
	courtStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette[shell.ToneOverlay]).
			Foreground(palette[shell.ToneText])
)

func spanStyle(s shell.Span) lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(palette[s.Tone])
	if s.Tone == "" {
		st = st.Foreground(palette[shell.ToneText])
	}
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Href != "" {
		st = st.Underline(true)
	}
	if s.Chip {
		st = st.Background(surface).Padding(0, 1)
	}
	return st
}

func renderLine(l shell.Line) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", l.Indent))
	if l.Bullet {
		b.WriteString(ghostStyle.Render("•") + " ")
	}
	for i, s := range l.Spans {
		if s.Chip && i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(spanStyle(s).Render(s.Text))
	}
	return b.String()
}

func renderOutput(o *shell.Output) []string {
	if o == nil {
		return nil
	}
	var out []string
	for _, label := range o.Banners {
		out = append(out, bannerStyle.Render("achievement unlocked: "+label))
	}
	for _, l := range o.Lines {
		out = append(out, renderLine(l))
	}
	return out
}

// renderEntry draws one history entry. court replaces the output of the
// entry that owns the running game.
func renderEntry(e shell.Entry, court string) string {
	var rows []string
	if e.ShowPrompt() {
		rows = append(rows, promptStyle.Render(Prompt)+" "+e.Command)
	}
	if court != "" && e.Output != nil {
		for _, label := range e.Output.Banners {
			rows = append(rows, bannerStyle.Render("achievement unlocked: "+label))
		}
		rows = append(rows, court)
		for _, l := range e.Output.Lines {
			rows = append(rows, renderLine(l))
		}
		return strings.Join(rows, "\n")
	}
	rows = append(rows, renderOutput(e.Output)...)
	return strings.Join(rows, "\n")
}

// courtSize fits the court into width columns. Cells are about twice as
// tall as they are wide, so the row count is halved. A positive maxRows
// caps the grid so the rest of the game entry stays on screen.
func courtSize(width, maxRows int) (cols, rows int) {
	cols = min(max(width-2, 20), 80)
	rows = max(int(float64(cols)*pong.Height/pong.Width/2), 8)
	if maxRows > 0 && rows > maxRows {
		rows = max(maxRows, minCourtRows)
	}
	return cols, rows
}

const minCourtRows = 4

// courtChrome counts the rows a game entry draws besides the grid: the
// echoed command, banners, the two border rows, the score line and the
// trailing output lines.
func courtChrome(e shell.Entry) int {
	n := 4
	if e.Output != nil {
		n += len(e.Output.Banners) + len(e.Output.Lines)
	}
	return n
}

func renderCourt(s pong.Snapshot, width, maxRows int) string {
	cols, rows := courtSize(width, maxRows)
	g := pong.NewGrid(cols, rows)
	pong.Render(s, g)

	status := fmt.Sprintf("You %d : %d CPU", s.Score.Player, s.Score.CPU)
	switch s.Status {
	case pong.StatusPaused:
		status += "  paused"
	case pong.StatusGameOver:
		status += fmt.Sprintf("  %s won · r to restart", s.Winner())
	}
	return courtStyle.Render(g.String()) + "\n" + ghostStyle.Render(status)
}
