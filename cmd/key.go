package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/cascade-chat/internal/config"
	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/spf13/cobra"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Gemini API key kept in the secret store",
	}

	cmd.AddCommand(newKeySetCmd(), newKeyShowCmd(), newKeyDeleteCmd())

	return cmd
}

func newKeySetCmd() *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API key (reads one line from stdin when --value is omitted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(value) == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && strings.TrimSpace(line) == "" {
					return fmt.Errorf("read api key from stdin: %w", domain.ErrMissingAPIKey)
				}
				value = line
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return domain.ErrMissingAPIKey
			}

			secrets, err := wireSecretStore()
			if err != nil {
				return err
			}
			if err := secrets.Put(cmd.Context(), config.APIKeySecret, value); err != nil {
				return fmt.Errorf("store api key: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "API key stored.")
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "API key value")

	return cmd
}

func newKeyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show a masked copy of the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secrets, err := wireSecretStore()
			if err != nil {
				return err
			}

			value, err := secrets.Get(cmd.Context(), config.APIKeySecret)
			if errors.Is(err, domain.ErrSecretNotFound) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No API key stored.")
				return err
			}
			if err != nil {
				return fmt.Errorf("read api key: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), maskSecret(value))
			return err
		},
	}
}

func newKeyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secrets, err := wireSecretStore()
			if err != nil {
				return err
			}
			if err := secrets.Delete(cmd.Context(), config.APIKeySecret); err != nil {
				return fmt.Errorf("delete api key: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
			return err
		},
	}
}

// maskSecret keeps the first and last four characters of long values.
func maskSecret(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}
