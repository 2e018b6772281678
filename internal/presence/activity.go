// Package presence turns an editor snapshot and the user's configuration into
// the activity shown by the companion app. Everything here is pure: no I/O,
// no state carried between calls.
package presence

// Activity is the outbound presence payload. A fresh value is built for every
// update; nothing is carried over from the previous one.
type Activity struct {
	Details    string `json:"details"`
	State      string `json:"state"`
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
	Start      int64  `json:"start"` // unix seconds
}

// Case identifies which dispatch branch produced an Activity.
type Case int

const (
	CaseSuppressed Case = iota
	CaseKnownType
	CaseFileExplorer
	CaseTerminal
	CaseWritable
	CaseIdle
)

var caseNames = map[Case]string{
	CaseSuppressed:   "suppressed",
	CaseKnownType:    "known-type",
	CaseFileExplorer: "file-explorer",
	CaseTerminal:     "terminal",
	CaseWritable:     "writable",
	CaseIdle:         "idle",
}

func (c Case) String() string {
	if n, ok := caseNames[c]; ok {
		return n
	}
	return "unknown"
}
