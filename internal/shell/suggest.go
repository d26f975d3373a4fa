package shell

import (
	"strings"
	"time"
)

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Suggest returns the known command closest to input, or "" when there is no
// single close match.
func Suggest(input string) string {
	return suggestFrom(input, suggestionCommands)
}

func suggestFrom(input string, candidates []string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if len([]rune(input)) < 3 || strings.ContainsAny(input, " \t") {
		return ""
	}

	maxDist := 2
	if len([]rune(input)) <= 4 {
		maxDist = 1
	}

	best, bestDist, secondDist := "", -1, -1
	for _, cmd := range candidates {
		if cmd == input {
			return ""
		}
		d := Levenshtein(input, cmd)
		switch {
		case bestDist < 0 || d < bestDist:
			secondDist = bestDist
			best, bestDist = cmd, d
		case secondDist < 0 || d < secondDist:
			secondDist = d
		}
	}

	if bestDist < 0 || bestDist > maxDist || secondDist == bestDist {
		return ""
	}
	return best
}

// Complete returns the only listed command starting with input.
func Complete(input string) (string, bool) {
	input = strings.ToLower(input)
	if input == "" {
		return "", false
	}
	var match string
	for _, cmd := range Commands {
		if strings.HasPrefix(cmd, input) {
			if match != "" {
				return "", false
			}
			match = cmd
		}
	}
	return match, match != ""
}

// GhostHint returns the untyped remainder of a hinted command and its short
// description, e.g. "exp" -> ("erience", "skills + work + impact").
func GhostHint(input string) (suffix, hint string) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || strings.Contains(input, " ") {
		return "", ""
	}
	var match string
	for _, h := range commandHints {
		if strings.HasPrefix(h.command, input) {
			if match != "" {
				return "", ""
			}
			match, hint = h.command, h.hint
		}
	}
	if match == "" || match == input {
		return "", ""
	}
	return match[len(input):], hint
}

// DayOfYear is the 1-based UTC day of the year, so a date-seeded pick is the
// same for every visitor on that calendar day.
func DayOfYear(t time.Time) int {
	return t.UTC().YearDay()
}

// Cowsay draws message in a speech bubble over a cow.
func Cowsay(message string) string {
	wrapped := wrapText(message, 46)
	width := 0
	for _, l := range wrapped {
		width = max(width, len([]rune(l)))
	}
	pad := func(s string) string {
		return s + strings.Repeat(" ", width-len([]rune(s)))
	}

	out := []string{" " + strings.Repeat("_", width+2)}
	if len(wrapped) == 1 {
		out = append(out, "< "+pad(wrapped[0])+" >")
	} else {
		for i, l := range wrapped {
			switch i {
			case 0:
				out = append(out, "/ "+pad(l)+" \\")
			case len(wrapped) - 1:
				out = append(out, "\\ "+pad(l)+" /")
			default:
				out = append(out, "| "+pad(l)+" |")
			}
		}
	}
	out = append(out, " "+strings.Repeat("-", width+2),
		`        \   ^__^`,
		`         \  (oo)\_______`,
		`            (__)\       )\/\`,
		`                ||----w |`,
		`                ||     ||`,
	)
	return strings.Join(out, "\n")
}

func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var out []string
	current := words[0]
	for _, w := range words[1:] {
		if len([]rune(current))+1+len([]rune(w)) <= width {
			current += " " + w
			continue
		}
		out = append(out, current)
		current = w
	}
	return append(out, current)
}
