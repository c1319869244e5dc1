package domain

type Outcome string

const (
	OutcomeNothingToDo Outcome = "nothing_to_do"
	OutcomePublished   Outcome = "published"
	OutcomeFailed      Outcome = "failed"
)

// RunResult describes how a single run ended.
type RunResult struct {
	Outcome  Outcome
	Date     string
	Filename string
	ImageURL string
	Caption  string
	MediaID  string
	// Detail holds the remote error message when Outcome is OutcomeFailed.
	Detail string
}
