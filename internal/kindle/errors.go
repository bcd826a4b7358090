package kindle

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLine is returned when a block's title or metadata line cannot be parsed.
	ErrMalformedLine = errors.New("malformed clipping line")

	// ErrInvalidEntry is returned when an entry is constructed without a required field.
	ErrInvalidEntry = errors.New("invalid entry")
)

// MalformedBlockError describes a block the parser skipped.
type MalformedBlockError struct {
	Block  int    // index of the block among non-blank blocks
	Line   int    // line within the block that failed
	Reason string
	Text   string // raw block text
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("block %d, line %d: %s: %s", e.Block, e.Line, ErrMalformedLine, e.Reason)
}

func (e *MalformedBlockError) Unwrap() error {
	return ErrMalformedLine
}
