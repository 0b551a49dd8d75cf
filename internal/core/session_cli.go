package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"wayfare/pkg/schema"
)

// CLISession drives a Session interactively from a terminal: it opens one
// itinerary thread, relays prompts, renders the diff preview when the agent
// asks for confirmation, and collects the yes/no decision.
type CLISession struct {
	Session *Session
	In      io.Reader
	Out     io.Writer

	shown int // messages already printed
}

// NewCLISession creates a CLI session over stdin/stdout.
func NewCLISession(session *Session) *CLISession {
	return &CLISession{
		Session: session,
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run executes the interactive loop until the user quits or an unrecoverable
// error occurs.
func (c *CLISession) Run(ctx context.Context, itineraryID string) error {
	fmt.Fprintf(c.Out, "🧳 Opening itinerary %s...\n", itineraryID)

	c.Session.Open(ctx, itineraryID)
	if err := c.Session.Err(); err != nil {
		return fmt.Errorf("open thread: %w", err)
	}
	defer c.Session.Close()

	c.showNewMessages()
	fmt.Fprintln(c.Out, "✅ Thread ready. Type a request, or /quit to leave.")

	reader := bufio.NewReader(c.In)

	for {
		fmt.Fprint(c.Out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		text := strings.TrimSpace(line)
		switch {
		case text == "":
			continue
		case text == "/quit", text == "/q":
			fmt.Fprintln(c.Out, "👋 Closing thread.")
			return nil
		}

		fmt.Fprintln(c.Out, "🤖 Thinking...")
		c.Session.Send(ctx, text)
		c.showNewMessages()

		if err := c.Session.Err(); err != nil {
			fmt.Fprintf(c.Out, "❌ %v (send again to retry)\n", err)
			continue
		}

		if c.Session.State() == StateAwaitingConfirmation {
			if err := c.resolveConfirmation(ctx, reader); err != nil {
				return err
			}
		}
	}
}

// resolveConfirmation renders the pending proposal and collects the
// decision.
func (c *CLISession) resolveConfirmation(ctx context.Context, reader *bufio.Reader) error {
	record := c.Session.HIL()
	if record == nil {
		return nil
	}

	fmt.Fprintf(c.Out, "\n📊 %s\n", record.ConfirmationMessage)
	if record.Summary != "" {
		fmt.Fprintf(c.Out, "   %s\n", record.Summary)
	}

	if preview, err := c.Session.DiffPreview(ctx); err == nil && len(preview) > 0 {
		fmt.Fprint(c.Out, RenderDiff(preview))
	} else if err != nil {
		fmt.Fprintf(c.Out, "⚠️  Preview unavailable: %v\n", err)
	}

	fmt.Fprint(c.Out, "\nApply these changes? [yes/no]: ")
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes", "y":
		c.Session.Confirm(ctx)
		if err := c.Session.Err(); err != nil {
			fmt.Fprintf(c.Out, "❌ %v\n", err)
		} else if it := c.Session.Itinerary(); it != nil {
			fmt.Fprintf(c.Out, "✅ Itinerary updated (%d days).\n", len(it.Days))
		}

	default:
		c.Session.Cancel(ctx)
		if err := c.Session.Err(); err != nil {
			fmt.Fprintf(c.Out, "❌ %v\n", err)
		} else {
			fmt.Fprintln(c.Out, "❌ Changes discarded.")
		}
	}

	c.showNewMessages()
	return nil
}

// showNewMessages prints messages appended since the last call.
func (c *CLISession) showNewMessages() {
	messages := c.Session.Messages()
	for ; c.shown < len(messages); c.shown++ {
		msg := messages[c.shown]
		if msg.Content == "" {
			continue
		}
		if msg.Role == schema.RoleHuman {
			fmt.Fprintf(c.Out, "you: %s\n", msg.Content)
		} else {
			fmt.Fprintf(c.Out, "agent: %s\n", msg.Content)
		}
	}
}
