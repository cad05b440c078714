package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Secrets wall commands",
	}

	cmd.AddCommand(newSecretListCmd())
	cmd.AddCommand(newSecretShareCmd())
	cmd.AddCommand(newSecretMineCmd())

	return cmd
}

func newSecretListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Read the secrets wall",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SecretsResult

			if err := client.Get("/api/v1/secrets", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSecretShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share <secret>",
		Short: "Share a secret anonymously",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := strings.TrimSpace(strings.Join(args, " "))
			if secret == "" {
				return fmt.Errorf("secret must not be empty")
			}

			req := map[string]string{"secret": secret}
			if err := client.Post("/api/v1/secrets", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Secret shared")
			return nil
		},
	}
}

func newSecretMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the secrets you have shared",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SecretsResult

			if err := client.Get("/api/v1/secrets/mine", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
