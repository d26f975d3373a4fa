package shell

// LineEditor is the prompt's input buffer with history navigation.
// The zero value is ready to use.
type LineEditor struct {
	Input string

	// index into the history being browsed; 0 means the live line.
	index int
	draft string
}

// Up steps back through history, saving the live line the first time.
func (e *LineEditor) Up(history []string) {
	if len(history) == 0 || e.index >= len(history) {
		return
	}
	if e.index == 0 {
		e.draft = e.Input
	}
	e.index++
	e.Input = history[len(history)-e.index]
}

// Down steps forward, restoring the saved draft past the newest entry.
func (e *LineEditor) Down(history []string) {
	if e.index == 0 {
		return
	}
	e.index--
	if e.index == 0 || e.index > len(history) {
		e.index = 0
		e.Input = e.draft
		return
	}
	e.Input = history[len(history)-e.index]
}

// Tab completes the input when exactly one command matches its prefix.
func (e *LineEditor) Tab() bool {
	cmd, ok := Complete(e.Input)
	if ok {
		e.Set(cmd)
	}
	return ok
}

// Reset clears the input, as Escape and Ctrl+C do.
func (e *LineEditor) Reset() {
	e.Set("")
}

// Set replaces the input and leaves history browsing.
func (e *LineEditor) Set(v string) {
	e.Input = v
	e.index = 0
	e.draft = ""
}

// Submitted resets the editor after Enter, pre-filling next if the command
// asked for it.
func (e *LineEditor) Submitted(next string) {
	e.Set(next)
}
