// Package dialogue splits doctor/patient transcripts into speaker turns.
package dialogue

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Role identifies a dialogue participant.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Label is the display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleDoctor:
		return "Doctor"
	case RolePatient:
		return "Patient"
	}
	return string(r)
}

// Turn is one contiguous utterance by a single speaker.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

var rolePatterns = []struct {
	role Role
	re   *regexp.Regexp
}{
	{RoleDoctor, regexp.MustCompile(`(?i)^doctor:\s*(.*)$`)},
	{RolePatient, regexp.MustCompile(`(?i)^patient:\s*(.*)$`)},
}

func matchRole(line string) (Role, string, bool) {
	for _, p := range rolePatterns {
		if m := p.re.FindStringSubmatch(line); m != nil {
			return p.role, m[1], true
		}
	}
	return "", "", false
}

// Segment splits a transcript into turns. Lines starting with "Doctor:" or
// "Patient:" (any case) open a new turn; other lines continue the open turn
// and are dropped when no turn is open yet. Turns with no text are omitted.
func Segment(transcript string) []Turn {
	var (
		turns []Turn
		role  Role
		buf   strings.Builder
		open  bool
	)

	flush := func() {
		if !open {
			return
		}
		if text := strings.TrimSpace(buf.String()); text != "" {
			turns = append(turns, Turn{Role: role, Text: text})
		}
		buf.Reset()
		open = false
	}

	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r, rest, ok := matchRole(line); ok {
			flush()
			role = r
			open = true
			buf.WriteString(rest)
			continue
		}
		if !open {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(line)
	}
	flush()

	return turns
}

// SegmentValue segments a decoded JSON value. Only strings are transcripts;
// any other value yields no turns.
func SegmentValue(v any) []Turn {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return Segment(s)
}

// SegmentRaw segments a raw JSON conversation field, which may be a string or
// a structured object.
func SegmentRaw(raw json.RawMessage) []Turn {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return Segment(s)
}
