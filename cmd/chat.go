package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	chatrender "github.com/bnema/cascade-chat/internal/adapters/render/chat"
	"github.com/bnema/cascade-chat/internal/application"
	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/spf13/cobra"
)

type appLoader func(cmd *cobra.Command) (*app, error)

var exitWords = map[string]struct{}{
	"exit": {},
	"sair": {},
	"quit": {},
}

func newChatCmd(load appLoader) *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			return runChat(cmd, app, resume)
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Resume the last saved conversation")

	return cmd
}

// consoleObserver prints quota alerts and migrations as they happen.
type consoleObserver struct {
	out      io.Writer
	renderer chatrender.Renderer
}

func (o consoleObserver) OnQuota(model domain.ModelID, _ error) {
	_, _ = fmt.Fprintln(o.out, o.renderer.QuotaAlert(model))
}

func (o consoleObserver) OnMigrated(_, to domain.ModelID) {
	_, _ = fmt.Fprintln(o.out, o.renderer.Migrated(to))
}

func runChat(cmd *cobra.Command, app *app, resume bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	transcript, err := app.chat.Start(ctx, resume)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.chat.Close(); closeErr != nil {
			app.logger.Debug("close chat session", "error", closeErr)
		}
	}()

	app.chat.Observe(consoleObserver{out: out, renderer: app.renderer})

	if _, err := fmt.Fprintln(out, app.renderer.Banner(app.chat.Pool())); err != nil {
		return err
	}
	if resume && len(transcript.History) > 0 {
		if _, err := fmt.Fprintf(out, "Resumed %d turns from %s on %s\n", len(transcript.History), app.transcripts.Path(), app.chat.CurrentModel()); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		if _, err := fmt.Fprint(out, app.renderer.Prompt()); err != nil {
			return err
		}
		if !scanner.Scan() {
			break
		}

		text := strings.TrimSpace(scanner.Text())
		if _, quit := exitWords[strings.ToLower(text)]; quit {
			break
		}
		if text == "" {
			continue
		}

		var delivery application.Delivery
		err := chatrender.RunWithSpinner(ctx, cmd.ErrOrStderr(), "Thinking...", func(ctx context.Context) error {
			var sendErr error
			delivery, sendErr = app.chat.Send(ctx, text)
			return sendErr
		})
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			if _, writeErr := fmt.Fprintln(out, app.renderer.Failure(err)); writeErr != nil {
				return writeErr
			}
			continue
		}

		if _, err := fmt.Fprintln(out, app.renderer.Reply(delivery)); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read input: %w", err)
	}

	_, err = fmt.Fprintln(out, "\n"+app.renderer.Goodbye())
	return err
}
