package storage

import (
	"strings"

	"kvstore/internal/domain"
)

const (
	setCommand      = "SET"
	fieldSeparator  = " "
	recordSeparator = '\n'
)

// EncodeRecord renders the log line for a SET, including the trailing newline.
func EncodeRecord(key, value string) string {
	var sb strings.Builder
	sb.Grow(len(setCommand) + len(key) + len(value) + 3)
	sb.WriteString(setCommand)
	sb.WriteString(fieldSeparator)
	sb.WriteString(key)
	sb.WriteString(fieldSeparator)
	sb.WriteString(value)
	sb.WriteByte(recordSeparator)
	return sb.String()
}

// ParseRecord decodes one log line. Only the first two spaces separate
// fields, so the value keeps any spaces it contains, including trailing
// ones. Leading indentation before SET is ignored. ok is false for lines
// that are not a complete SET record.
func ParseRecord(line string) (entry domain.Entry, ok bool) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	line = strings.TrimLeft(line, " \t")
	parts := strings.SplitN(line, fieldSeparator, 3)
	if len(parts) != 3 || parts[0] != setCommand {
		return entry, false
	}
	return domain.NewEntry(parts[1], parts[2]), true
}
