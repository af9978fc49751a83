package settings

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownKind      = errors.New("unknown config type")
	ErrInvalidID        = errors.New("id must be a positive integer")
	ErrNoFields         = errors.New("no valid fields provided")
	ErrNotFound         = errors.New("config record not found")
	ErrPageNotFound     = errors.New("sponsorship page does not exist")
	ErrConflict         = errors.New("a record with that value already exists")
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// FieldsError reports request fields that are missing or malformed.
type FieldsError struct {
	Reason string
	Fields []string
}

func (e *FieldsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}
