package shell

import "time"

// Achievement labels, as shown in the unlock banner.
const (
	LabelRecruiterMode        = "recruiter mode"
	LabelSpeedrunner          = "speedrunner"
	LabelDocumentationEnjoyer = "documentation enjoyer"
	LabelProcrastinator       = "procrastinator"
)

const (
	speedrunWindow = 10 * time.Second
	speedrunCount  = 4
	helpThreshold  = 3
)

var recruiterSteps = [...]string{"experience", "projects", "resume"}

// Achievements are the easter-egg flags of one session. Each flips once.
type Achievements struct {
	Procrastinator       bool `json:"procrastinator"`
	DocumentationEnjoyer bool `json:"documentationEnjoyer"`
	Speedrunner          bool `json:"speedrunner"`
	RecruiterMode        bool `json:"recruiterMode"`
}

// tracker owns the achievement flags and the counters that drive them.
type tracker struct {
	unlocked      Achievements
	helpCount     int
	manpageShown  bool
	burst         []time.Time
	recruiterStep int
}

// observe records one non-sudo command, effective being its normalized name
// with "help help" folded into "help". It returns the labels unlocked by it.
func (t *tracker) observe(effective string, now time.Time) []string {
	var labels []string

	if t.observeRecruiter(effective) {
		labels = append(labels, LabelRecruiterMode)
	}
	if t.observeBurst(effective, now) {
		labels = append(labels, LabelSpeedrunner)
	}
	if effective == "help" && t.helpCount >= helpThreshold && !t.unlocked.DocumentationEnjoyer {
		t.unlocked.DocumentationEnjoyer = true
		labels = append(labels, LabelDocumentationEnjoyer)
	}
	if effective == "pong" && !t.unlocked.Procrastinator {
		t.unlocked.Procrastinator = true
		labels = append(labels, LabelProcrastinator)
	}
	return labels
}

func (t *tracker) observeBurst(effective string, now time.Time) bool {
	if effective == "" || effective == "clear" || effective == "q" {
		return false
	}
	kept := t.burst[:0]
	for _, ts := range t.burst {
		if now.Sub(ts) <= speedrunWindow {
			kept = append(kept, ts)
		}
	}
	t.burst = append(kept, now)

	if len(t.burst) >= speedrunCount && !t.unlocked.Speedrunner {
		t.unlocked.Speedrunner = true
		return true
	}
	return false
}

func (t *tracker) observeRecruiter(effective string) bool {
	if t.unlocked.RecruiterMode {
		return false
	}
	if effective == "skills" {
		effective = "experience"
	}

	switch {
	case effective == "clear" || effective == "q":
		t.recruiterStep = 0
	case t.recruiterStep < len(recruiterSteps) && effective == recruiterSteps[t.recruiterStep]:
		t.recruiterStep++
		if t.recruiterStep == len(recruiterSteps) {
			t.unlocked.RecruiterMode = true
			return true
		}
	case effective == recruiterSteps[0]:
		t.recruiterStep = 1
	default:
		t.recruiterStep = 0
	}
	return false
}
