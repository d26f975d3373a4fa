package shell

// Commands are the commands offered by help and Tab completion.
var Commands = []string{
	"help",
	"about",
	"experience",
	"projects",
	"blog",
	"contact",
	"resume",
	"pong",
	"clear",
	"welcome",
	"history",
	"pwd",
}

// suggestionCommands adds the aliases to Commands. cowsay stays hidden.
var suggestionCommands = append(append([]string(nil), Commands...),
	"ls", "skills", "writing", "email", "socials", "whoami", "q",
)

type commandHint struct {
	command string
	hint    string
}

var commandHints = []commandHint{
	{"experience", "skills + work + impact"},
	{"projects", "featured builds"},
	{"resume", "full PDF"},
	{"contact", "email + socials"},
	{"blog", "posts"},
}

// Runnable from the ?run= query parameter.
var queryCommands = map[string]bool{"about": true, "contact": true}

// QueryCommand reports whether a ?run= value may be executed, normalized.
func QueryCommand(v string) (string, bool) {
	v = normalize(v)
	return v, queryCommands[v]
}

const asciiArt = `
  _______ _______ ______ _     _     _______ _______  ______ _______
     /    |_____| |      |_____|        |    |______ |_____/ |  |  |
    /____ |     | |_____ |     |        |    |______ |    \_ |  |  |
`

var statusLines = []string{
	"Status: compiled, not interpreted",
	"Mood: go fmt'd",
	"Latency: one round trip per keystroke, worth it",
	"Uptime: longer than my last side project",
	"Warning: may contain goroutines",
	"Tip: type 'pong' if you came here to procrastinate",
}

var roastLines = []string{
	"Nice try.",
	"That's not a thing (yet).",
	"404: command missing.",
	"that command is still on a feature branch.",
	"undefined: your command",
}

var cowsayLines = []string{
	"Don't communicate by sharing memory; share memory by communicating.",
	"if err != nil { return err } is a lifestyle.",
	"A little copying is better than a little dependency.",
	"I deploy on Fridays. I also enjoy pain.",
	"Clear is better than clever.",
	"Works on my machine is not a deployment strategy.",
	"Cache invalidation is my cardio.",
	"The bug is in the edge case. It's always the edge case.",
	"Errors are values. So are my weekends.",
	"Unknown command? Sounds like a feature request.",
	"Minimal UI. Maximum keyboard.",
	"Gofmt's style is no one's favorite, yet gofmt is everyone's favorite.",
	"Be nice to alerts. They're trying their best.",
	"Congratulations, you found the cow.",
}

var idleLines = []string{
	"psst… type 'pong' if you're bored.",
	"still there? the garbage collector misses you.",
	"idle detected. running: nothing.",
	"keyboard timeout… press any key to resume existence.",
	"if you're stuck, try 'help' (I won't judge).",
	"this is the part where you type 'projects'.",
	"brb, pretending to be a real shell…",
	"no input for 20s. mood: suspiciously calm.",
	"type 'resume' to grab the PDF.",
}
