package kindle

import (
	"fmt"
	"regexp"
)

// Metadata lines seen in the wild:
//
//	- Your Highlight on page 8 | Location 64-64 | Added on Tuesday, April 15, 2025 10:16:21 PM
//	- Your Note on page 31 | Location 307 | Added on Tuesday, April 15, 2025 11:33:26 PM
//	- Your Highlight at location 784-785 | Added on Saturday, 26 March 2016 18:37:26
//	- Your Bookmark on page 12453252 | Added on Friday, 5 July 2024 09:55:52
//	- Highlight Loc. 1234-35 | Added on Monday, March 12, 2012, 07:01 PM
//
// The line is consumed left to right by the segments below. Required
// segments must match where the previous one stopped; the optional
// positional segments between them may appear in any order or not at all.

type metadata struct {
	action   Action
	page     *string
	location *string
	date     string
}

type segment struct {
	name     string
	pattern  *regexp.Regexp
	required bool
	apply    func(m *metadata, value string)
}

var metadataSegments = []segment{
	{
		name:     "dash",
		pattern:  regexp.MustCompile(`^\s*-\s*`),
		required: true,
	},
	{
		name:     "action",
		pattern:  regexp.MustCompile(`^(?i:your\s+)?(\p{L}+)`),
		required: true,
		apply:    func(m *metadata, v string) { m.action = ParseAction(v) },
	},
	{
		name:    "page",
		pattern: regexp.MustCompile(`(?i)^\s*(?:\|\s*)?(?:on\s+)?page\s+([^\s|]+)`),
		apply:   func(m *metadata, v string) { m.page = &v },
	},
	{
		name:    "location",
		pattern: regexp.MustCompile(`(?i)^\s*(?:\|\s*)?(?:(?:on|at)\s+)?(?:location\s+|loc\.\s*)([^\s|]+)`),
		apply:   func(m *metadata, v string) { m.location = &v },
	},
	{
		name:     "date",
		pattern:  regexp.MustCompile(`(?i)^.*?\|\s*added on\s+(.*\S)`),
		required: true,
		apply:    func(m *metadata, v string) { m.date = v },
	},
}

// match applies the segment at the start of s and returns the captured
// value and the unconsumed remainder.
func (seg segment) match(s string) (value, rest string, ok bool) {
	loc := seg.pattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return "", s, false
	}
	if len(loc) >= 4 && loc[2] >= 0 {
		value = s[loc[2]:loc[3]]
	}
	return value, s[loc[1]:], true
}

func parseMetadata(line string) (metadata, error) {
	var m metadata
	rest := line

	var optional []segment
	for _, seg := range metadataSegments {
		if !seg.required {
			optional = append(optional, seg)
			continue
		}

		rest = matchOptional(&m, rest, optional)
		optional = nil

		value, remaining, ok := seg.match(rest)
		if !ok {
			return metadata{}, fmt.Errorf("missing %s segment", seg.name)
		}
		if seg.apply != nil {
			seg.apply(&m, value)
		}
		rest = remaining
	}

	return m, nil
}

// matchOptional consumes optional segments in whatever order they appear,
// each at most once.
func matchOptional(m *metadata, rest string, segments []segment) string {
	matched := make([]bool, len(segments))
	for progress := true; progress; {
		progress = false
		for i, seg := range segments {
			if matched[i] {
				continue
			}
			value, remaining, ok := seg.match(rest)
			if !ok {
				continue
			}
			seg.apply(m, value)
			rest = remaining
			matched[i] = true
			progress = true
		}
	}
	return rest
}
