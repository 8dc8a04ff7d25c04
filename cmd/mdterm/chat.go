package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"pkt.systems/mdterm"
)

const (
	clearScreen = "\x1b[2J\x1b[H"
	clearLine   = "\r\x1b[2K"
	promptText  = "> "
)

const chatHelp = `Commands:
  help        show this help
  clear       clear the screen
  quit, exit  leave the chat

Anything else is sent to Gemini and the reply is rendered as Markdown.`

type chatClient interface {
	Send(ctx context.Context, prompt string) (string, error)
}

// session is one interactive chat. Every prompt is sent on its own; no
// history is kept between requests.
type session struct {
	client   chatClient
	renderer *mdterm.Renderer
	styles   mdterm.Styles
	width    int
	timeout  time.Duration
	out      io.Writer
	errOut   io.Writer
	logger   *slog.Logger
	// plain suppresses terminal control sequences and the banner border.
	plain bool
}

func (s *session) run(ctx context.Context, in io.Reader, model string) error {
	s.banner(model)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(s.out)
			return err
		}
		fmt.Fprint(s.out, s.styles.Prompt.Render(promptText))
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(s.out)
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "help":
			fmt.Fprintln(s.out, chatHelp)
			fmt.Fprintln(s.out)
			continue
		case "clear":
			if !s.plain {
				fmt.Fprint(s.out, clearScreen)
			}
			continue
		case "quit", "exit":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
		if err := s.ask(ctx, line); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	fmt.Fprintln(s.out)
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read prompt: %w", err)
	}
	return nil
}

func (s *session) banner(model string) {
	text := fmt.Sprintf("Gemini chat (%s)\nType help for commands, quit to leave.", model)
	if s.plain {
		fmt.Fprintln(s.out, text)
		fmt.Fprintln(s.out)
		return
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	fmt.Fprintln(s.out, box.Render(text))
	fmt.Fprintln(s.out)
}

// ask sends prompt and renders the reply. Failures are reported on errOut
// and returned so callers can decide whether to continue.
func (s *session) ask(ctx context.Context, prompt string) error {
	fmt.Fprint(s.out, s.styles.Notice.Render("Thinking..."))
	reqCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	reply, err := s.client.Send(reqCtx, prompt)
	if s.plain {
		fmt.Fprintln(s.out)
	} else {
		fmt.Fprint(s.out, clearLine)
	}
	s.logger.Debug("gemini request", "duration", time.Since(start), "bytes", len(reply), "error", err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("request timed out after %s", s.timeout)
		}
		fmt.Fprintln(s.errOut, s.styles.Error.Render("Error: "+err.Error()))
		return err
	}

	fmt.Fprintln(s.out, s.styles.Strong.Render("Gemini:"))
	if err := s.renderer.Render(s.out, reply, s.width); err != nil {
		fmt.Fprintln(s.errOut, s.styles.Error.Render("Error: "+err.Error()))
		return err
	}
	fmt.Fprintln(s.out)
	return nil
}
