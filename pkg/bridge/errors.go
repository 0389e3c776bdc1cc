package bridge

import "errors"

var (
	// ErrUnknownCommand is returned for formatting commands other than
	// bold, italic and underline.
	ErrUnknownCommand = errors.New("unknown formatting command")
	// ErrNotEditing is returned when a session operation needs an active edit.
	ErrNotEditing = errors.New("session is not editing")
	// ErrAlreadyEditing is returned by Begin while an edit is active.
	ErrAlreadyEditing = errors.New("session is already editing")
	// ErrEmptyNote is returned when a draft with no title and no content is
	// committed. Nothing is written.
	ErrEmptyNote = errors.New("nothing to save")
	// ErrClosed is returned when sending on a closed bridge.
	ErrClosed = errors.New("bridge closed")
	// ErrMalformedScript is returned when an injected script cannot be interpreted.
	ErrMalformedScript = errors.New("malformed script")
)
