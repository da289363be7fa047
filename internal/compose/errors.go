// ABOUTME: Error kinds returned by thread generation and editing.
// ABOUTME: Sentinels for rejected edits plus SegmentTooLongError for pre-publish validation.
package compose

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyText       = errors.New("no text to work with")
	ErrNoThread        = errors.New("no thread yet - run 'seam thread generate' first")
	ErrIndexOutOfRange = errors.New("segment index out of range")
	ErrLastSegment     = errors.New("cannot delete the only segment")
	ErrCannotMove      = errors.New("segment cannot move further in that direction")
	ErrNothingToSplit  = errors.New("no text to split")
	ErrAlreadyFits     = errors.New("text is already short enough")
	ErrCannotSplit     = errors.New("cannot split further")
)

// SegmentTooLongError reports the first segment whose displayed text exceeds MaxLength.
type SegmentTooLongError struct {
	Index  int
	Length int
}

func (e *SegmentTooLongError) Error() string {
	return fmt.Sprintf("segment %d is over %d characters (%d)", e.Index+1, MaxLength, e.Length)
}

func indexErr(index, n int) error {
	return fmt.Errorf("%w: %d (thread has %d segments)", ErrIndexOutOfRange, index+1, n)
}
