package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"kvstore/internal/application/service"

	"go.uber.org/zap"
)

const (
	replyOK   = "OK"
	replyNull = "NULL"
	replyErr  = "ERR"
)

// CommandLoop serves the line protocol: one request is read, executed and
// answered before the next line is read.
type CommandLoop struct {
	save   *service.SaveEntryService
	get    *service.GetEntryService
	logger *zap.SugaredLogger
}

func NewCommandLoop(save *service.SaveEntryService, get *service.GetEntryService,
	logger *zap.SugaredLogger) *CommandLoop {
	return &CommandLoop{
		save:   save,
		get:    get,
		logger: logger,
	}
}

// Run processes lines from in until EXIT or EOF.
func (c *CommandLoop) Run(in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)
	c.logger.Info("Key-Value Store started. Awaiting commands...")

	for {
		raw, readErr := r.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			c.logger.Errorw("Failed to read command", "error", readErr)
			return readErr
		}

		if line := strings.TrimSpace(raw); line != "" {
			reply, exit := c.process(line)
			if exit {
				c.logger.Info("Received EXIT command. Shutting down.")
				return w.Flush()
			}
			w.WriteString(reply)
			w.WriteByte('\n')
			if err := w.Flush(); err != nil {
				return err
			}
		}

		if readErr != nil {
			c.logger.Info("Input closed. Shutting down.")
			return nil
		}
	}
}

func (c *CommandLoop) process(line string) (reply string, exit bool) {
	cmd, err := ParseCommand(line)
	if err != nil {
		c.logger.Warnw("Rejected command", "error", err)
		return replyErr, false
	}

	switch cmd.Action {
	case EXIT:
		return "", true
	case SET:
		res := c.save.Execute(service.SaveEntryCommand{Key: cmd.Key, Value: cmd.Value})
		if res.Err != nil {
			return replyErr, false
		}
		return replyOK, false
	default:
		res := c.get.Execute(service.GetEntryQuery{Key: cmd.Key})
		if res.Err != nil {
			return replyErr, false
		}
		if !res.Found {
			return replyNull, false
		}
		return res.Entry.Value(), false
	}
}
