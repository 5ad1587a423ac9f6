package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	chatrender "github.com/bnema/cascade-chat/internal/adapters/render/chat"
	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/spf13/cobra"
)

func newModelsCmd(load appLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models available to the API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}

			var models []domain.ModelInfo
			err = chatrender.RunWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching models...", func(ctx context.Context) error {
				var listErr error
				models, listErr = app.catalog.ListModels(ctx)
				return listErr
			})
			if err != nil {
				return fmt.Errorf("list models: %w", err)
			}

			if asJSON {
				payload, err := json.MarshalIndent(models, "", "  ")
				if err != nil {
					return fmt.Errorf("encode json output: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), app.renderer.Models(models, app.chat.Pool()))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
