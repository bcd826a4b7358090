package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/mrlokans/clippings/internal/kindle"
)

// Criteria selects entries. Empty criteria match everything.
type Criteria struct {
	Title         string
	Author        string
	Actions       []kindle.Action
	CaseSensitive bool
}

func (c Criteria) IsEmpty() bool {
	return c.Title == "" && c.Author == "" && len(c.Actions) == 0
}

// Match reports whether e satisfies every non-empty criterion. An author
// filter never matches an entry without an author.
func (c Criteria) Match(e kindle.Entry) bool {
	if c.Title != "" && !c.contains(e.Title(), c.Title) {
		return false
	}

	if c.Author != "" {
		if c.CaseSensitive {
			if !e.AuthorContains(c.Author) {
				return false
			}
		} else {
			author, ok := e.Author()
			if !ok || !c.contains(author, c.Author) {
				return false
			}
		}
	}

	if len(c.Actions) > 0 && !c.hasAction(e.Action()) {
		return false
	}

	return true
}

// Apply returns the entries matching c, in their original order.
func Apply(entries []kindle.Entry, c Criteria) []kindle.Entry {
	if c.IsEmpty() {
		return entries
	}

	var matched []kindle.Entry
	for _, e := range entries {
		if c.Match(e) {
			matched = append(matched, e)
		}
	}
	return matched
}

func (c Criteria) contains(s, substr string) bool {
	if c.CaseSensitive {
		return strings.Contains(s, substr)
	}
	// A Caser must not be shared between goroutines
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}

func (c Criteria) hasAction(action kindle.Action) bool {
	for _, a := range c.Actions {
		if a == action {
			return true
		}
	}
	return false
}
