package mines

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	ErrAlreadyPlaced = errors.New("mines have already been placed")
	ErrUnsavedBoard  = errors.New("board has not been saved yet")
	ErrTooManyMines  = errors.New("not enough free cells for mines")
	ErrOutOfBounds   = errors.New("coordinates outside of board")
)

// Strict turns contract violations into panics. Meant for development and
// tests; in production violations are only logged.
var Strict = false

type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}

// violation reports a bug in calling code. It never touches game state.
func violation(message string, fields logrus.Fields) {
	Log.WithFields(fields).Error("contract violation: " + message)
	if Strict {
		panic(AssertionError{message})
	}
}
