package domain

import (
	"fmt"
	"strings"
)

type Entry struct {
	key   string
	value string
}

func NewEntry(key, value string) Entry {
	return Entry{
		key:   key,
		value: value,
	}
}

func (entry *Entry) Key() string {
	return entry.key
}

func (entry *Entry) Value() string {
	return entry.value
}

// EntryRepository is the store surface the services and adapters depend on.
// Get reports found=false for keys that were never written.
type EntryRepository interface {
	Save(entry Entry) (Entry, error)
	Get(key string) (Entry, bool, error)
}

// ValidateEntry rejects entries the line-based log cannot represent: an empty
// key, a key containing whitespace, or a value containing a line break.
func ValidateEntry(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrProtocol)
	}
	if strings.ContainsAny(key, " \t\r\n") {
		return fmt.Errorf("%w: key %q contains whitespace", ErrProtocol, key)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: value for key %q contains a line break", ErrProtocol, key)
	}
	return nil
}
