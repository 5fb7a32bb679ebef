package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Answer is the reply to one question: a yes/no flag or free text.
type Answer struct {
	Flag   bool
	Text   string
	IsText bool
}

var (
	Yes = Answer{Flag: true}
	No  = Answer{}
)

// TextAnswer wraps a free-text reply.
func TextAnswer(s string) Answer {
	return Answer{Text: s, IsText: true}
}

// Truthy reports whether the answer takes the yes branch. Any text that is
// not blank counts as yes, including "false" and "0": only a JSON false,
// null or a missing answer take the no branch.
func (a Answer) Truthy() bool {
	if a.IsText {
		return strings.TrimSpace(a.Text) != ""
	}
	return a.Flag
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsText {
		return json.Marshal(a.Text)
	}
	return json.Marshal(a.Flag)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = No
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	default:
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("answer must be a boolean or a string: %w", err)
		}
		*a = Answer{Flag: b}
	}
	return nil
}

// Answers maps question ids to replies. A missing yes/no answer means no.
type Answers map[string]Answer
