package note

import "errors"

var (
	ErrNoteNotFound    = errors.New("note not found")
	ErrInvalidNoteType = errors.New("note type must be general, medical, mood, activity or behavior")
)
