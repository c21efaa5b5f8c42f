package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ParseCommand splits a command line such as "mpg123 -q -" on whitespace.
func ParseCommand(line string) (string, []string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty command")
	}
	return fields[0], fields[1:], nil
}

// CommandPlayer pipes audio into an external player's stdin.
type CommandPlayer struct {
	name string
	args []string
}

func NewCommandPlayer(line string) (*CommandPlayer, error) {
	name, args, err := ParseCommand(line)
	if err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("audio player %q not found: %w", name, err)
	}
	return &CommandPlayer{name: name, args: args}, nil
}

func (p *CommandPlayer) Play(ctx context.Context, audio []byte) error {
	cmd := exec.CommandContext(ctx, p.name, p.args...)
	cmd.Stdin = bytes.NewReader(audio)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", p.name, err)
	}
	return nil
}

// CommandSource reads raw audio from an external recorder's stdout.
type CommandSource struct {
	name string
	args []string
}

func NewCommandSource(line string) (*CommandSource, error) {
	name, args, err := ParseCommand(line)
	if err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("audio recorder %q not found: %w", name, err)
	}
	return &CommandSource{name: name, args: args}, nil
}

func (s *CommandSource) Open(ctx context.Context) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, s.name, s.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return &recording{ReadCloser: stdout, cmd: cmd}, nil
}

type recording struct {
	io.ReadCloser
	cmd *exec.Cmd
}

// Close stops the recorder and reaps it.
func (r *recording) Close() error {
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	_ = r.ReadCloser.Close()
	_ = r.cmd.Wait()
	return nil
}
