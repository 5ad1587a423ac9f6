package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var envFiles []string
	var resume bool

	// Wiring needs GOOGLE_API_KEY, so it runs per command instead of up front
	// and `version` keeps working without a key.
	load := func(cmd *cobra.Command) (*app, error) {
		return wireApp(cmd.Context(), wireOptions{envFiles: envFiles, logOut: cmd.ErrOrStderr()})
	}

	rootCmd := &cobra.Command{
		Use:           "cascade",
		Short:         "Gemini chat agent that keeps talking when a model runs out of quota",
		Long:          "cascade runs an interactive Gemini chat with a pool of models. When the current model hits its quota, the conversation migrates to the next model and the message is retried.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			return runChat(cmd, app, resume)
		},
	}

	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "Environment files to load before reading configuration")
	rootCmd.Flags().BoolVar(&resume, "resume", false, "Resume the last saved conversation")

	rootCmd.AddCommand(
		newVersionCmd(),
		newChatCmd(load),
		newModelsCmd(load),
		newHistoryCmd(load),
		newKeyCmd(),
	)

	return rootCmd
}
