package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/adred-codev/adwatch/internal/models"
)

// TerminalController reads one command per line from an io.Reader (stdin
// in production) and writes replies to an io.Writer. Its "channel" is a
// single fixed terminal channel shared by every line read from this
// reader, which is why it only makes sense to run at most one of these
// per process.
type TerminalController struct {
	handler *Handler
	in      io.Reader
	out     io.Writer
	logger  zerolog.Logger
}

func NewTerminalController(handler *Handler, in io.Reader, out io.Writer, logger zerolog.Logger) *TerminalController {
	return &TerminalController{handler: handler, in: in, out: out, logger: logger}
}

// Start blocks reading lines until ctx is cancelled or the reader reaches EOF.
func (c *TerminalController) Start(ctx context.Context) {
	scanner := bufio.NewScanner(c.in)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			reply := c.handler.Handle(ctx, IncomingMessage{
				Channel: models.TerminalChannel(),
				Owner:   models.OwnerId{},
				Text:    line,
			})
			if reply == "" {
				continue
			}
			fmt.Fprintln(c.out, reply)
		}
	}
}
