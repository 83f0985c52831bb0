package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// WorldProvider provides the world commands entered on the console are
// executed in. *server.Server implements it.
type WorldProvider interface {
	World() *world.World
}

// Console is a command source that reads command lines from an io.Reader
// (os.Stdin by default) and executes them in the default world. Output is
// written to a logger.
type Console struct {
	worlds WorldProvider
	log    *slog.Logger
	reader io.Reader
}

// New returns a Console executing commands in the default world of worlds.
func New(worlds WorldProvider, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{
		worlds: worlds,
		log:    log.With("component", "console"),
		reader: os.Stdin,
	}
}

// WithReader sets a custom reader for the console input.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run consumes command lines until ctx is cancelled or the reader reaches
// EOF. A missing leading slash is added.
func (c *Console) Run(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	src := &Source{log: c.log}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("Read console input.", "error", err)
			}
			return
		}
		line := normaliseLine(scanner.Text())
		if line == "" {
			continue
		}
		w := c.worlds.World()
		if w == nil {
			c.log.Warn("No world to execute command in.", "command", line)
			continue
		}
		<-w.Exec(func(tx *world.Tx) {
			execute(src, line, tx)
		})
	}
}

// execute runs the command line passed, which starts with a slash, on behalf
// of src.
func execute(src cmd.Source, line string, tx *world.Tx) {
	name, args, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	command, ok := cmd.ByAlias(name)
	if !ok {
		o := &cmd.Output{}
		o.Errorf("Unknown command: %s. Please check that the command exists and that you have permission to use it.", name)
		src.SendCommandOutput(o)
		return
	}
	command.Execute(args, src, tx)
}

func normaliseLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	if !strings.HasPrefix(line, "/") {
		line = "/" + line
	}
	return line
}

// Source is the cmd.Source of commands entered on the console.
type Source struct {
	log *slog.Logger
}

// NewSource returns a console Source writing output to log.
func NewSource(log *slog.Logger) *Source {
	if log == nil {
		log = slog.Default()
	}
	return &Source{log: log}
}

// Position ...
func (*Source) Position() mgl64.Vec3 { return mgl64.Vec3{} }

// Name ...
func (*Source) Name() string { return "Console" }

// SendCommandOutput logs the messages and errors of o.
func (s *Source) SendCommandOutput(o *cmd.Output) {
	for _, msg := range o.Messages() {
		s.log.Info(msg.String())
	}
	for _, err := range o.Errors() {
		s.log.Error(err.Error())
	}
}
