package domain

import "errors"

// ErrInvalidArgument is returned for malformed construction parameters,
// such as a non-positive index capacity.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrIO is returned when creating, reading, writing or syncing the log fails.
var ErrIO = errors.New("io error")

// ErrProtocol is returned by adapters for malformed commands.
var ErrProtocol = errors.New("protocol error")
