package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/spf13/cobra"
)

func newHistoryCmd(load appLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the last saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}

			transcript, err := app.chat.Transcript(cmd.Context())
			if errors.Is(err, domain.ErrTranscriptNotFound) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No saved conversation.")
				return err
			}
			if err != nil {
				return err
			}

			if asJSON {
				payload, err := json.MarshalIndent(transcript, "", "  ")
				if err != nil {
					return fmt.Errorf("encode json output: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return err
			}

			rendered, err := app.renderer.RenderTranscript(transcript)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
