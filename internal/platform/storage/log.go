package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"kvstore/internal/domain"
)

const filePerm = 0644

// EnsureExists creates an empty log at path unless one is already there.
func EnsureExists(path string) error {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrIO, path, err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", domain.ErrIO, path, err)
	}
	return nil
}

// Append writes one SET record and fsyncs it before returning. A nil error
// means the record survives a crash; callers must not update the index
// before that.
func Append(path, key, value string) (err error) {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", domain.ErrIO, path, err)
	}
	defer func() {
		if cerr := fd.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %v", domain.ErrIO, path, cerr)
		}
	}()

	w := bufio.NewWriter(fd)
	if _, err := w.WriteString(EncodeRecord(key, value)); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrIO, path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", domain.ErrIO, path, err)
	}
	if err := fd.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %v", domain.ErrIO, path, err)
	}
	return nil
}

// Replay returns every valid record in file order. A missing file yields no
// records and no error; malformed lines are skipped.
func Replay(path string) ([]domain.Entry, error) {
	fd, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrIO, path, err)
	}
	defer fd.Close()

	entries, err := ReadAllEntries(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrIO, path, err)
	}
	return entries, nil
}

// ReadAllEntries parses records from r until EOF.
func ReadAllEntries(r io.Reader) ([]domain.Entry, error) {
	var entries []domain.Entry
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString(recordSeparator)
		if len(line) > 0 {
			if entry, ok := ParseRecord(line); ok {
				entries = append(entries, entry)
			}
		}
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Log binds the log functions to a single file path.
type Log struct {
	path string
}

func NewLog(path string) *Log {
	return &Log{path: path}
}

func (l *Log) Path() string {
	return l.path
}

func (l *Log) EnsureExists() error {
	return EnsureExists(l.path)
}

func (l *Log) Append(key, value string) error {
	return Append(l.path, key, value)
}

func (l *Log) Replay() ([]domain.Entry, error) {
	return Replay(l.path)
}
