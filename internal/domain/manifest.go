package domain

import (
	"strings"
	"time"
)

// DateLayout is how manifests and post records name a calendar day.
const DateLayout = "2006_01_02"

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Candidate is one image entry of a daily manifest. Filename is the dedup key.
type Candidate struct {
	Filename string `json:"filename"`
	Prompt   string `json:"prompt"`
}

// Eligible reports whether c can still be published given the filenames already posted for its day.
func (c Candidate) Eligible(posted map[string]struct{}) bool {
	if c.Filename == "" || strings.TrimSpace(c.Prompt) == "" {
		return false
	}
	_, done := posted[c.Filename]
	return !done
}

type DailyManifest struct {
	Date   string      `json:"-"`
	Images []Candidate `json:"images"`
}

// Selection is the next candidate to publish and the day it belongs to.
type Selection struct {
	Date      string
	Candidate Candidate
}
