package cli

import (
	"fmt"
	"strings"

	"kvstore/internal/domain"
)

const (
	SET  = "SET"
	GET  = "GET"
	EXIT = "EXIT"
)

type Command struct {
	Action string
	Key    string
	Value  string
}

// ParseCommand splits a trimmed input line on its first two spaces. The
// command word is case-insensitive; everything after the key is the value.
func ParseCommand(line string) (Command, error) {
	parts := strings.SplitN(line, " ", 3)
	action := strings.ToUpper(parts[0])

	switch action {
	case EXIT:
		return Command{Action: EXIT}, nil
	case SET:
		if len(parts) != 3 || parts[1] == "" {
			return Command{}, fmt.Errorf("%w: expected SET <key> <value>", domain.ErrProtocol)
		}
		return Command{Action: SET, Key: parts[1], Value: parts[2]}, nil
	case GET:
		if len(parts) != 2 || parts[1] == "" {
			return Command{}, fmt.Errorf("%w: expected GET <key>", domain.ErrProtocol)
		}
		return Command{Action: GET, Key: parts[1]}, nil
	default:
		return Command{}, fmt.Errorf("%w: unknown command %q", domain.ErrProtocol, parts[0])
	}
}
