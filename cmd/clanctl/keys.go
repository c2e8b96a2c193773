package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage bot API keys",
}

var createKeyCmd = &cobra.Command{
	Use:   "create [label]",
	Short: "Issue a new API key",
	Long: `Issues a new API key by writing the store directly. The server must be
stopped, and the command needs --offline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireOffline("keys create"); err != nil {
			return err
		}
		ctx := context.Background()
		deps, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		key, err := deps.Repo.Keys.Create(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("New API Key: %s (label: %s)\n", key.Key, key.Label)
		return nil
	},
}

var revokeKeyCmd = &cobra.Command{
	Use:   "revoke [key]",
	Short: "Deactivate an API key",
	Long: `Deactivates an API key by writing the store directly. The server must be
stopped, and the command needs --offline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireOffline("keys revoke"); err != nil {
			return err
		}
		ctx := context.Background()
		deps, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		found, err := deps.Repo.Keys.Revoke(ctx, args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("api key not found")
		}

		fmt.Printf("API key revoked. A shared key cache may still accept it for up to %s.\n", deps.Specs.KeyCacheTTL)
		return nil
	},
}

var listKeysCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		deps, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		keys, err := deps.Repo.Keys.List(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tLABEL\tACTIVE\tCREATED_AT")
		for _, k := range keys {
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", k.Key, k.Label, k.Active, k.CreatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()
		return nil
	},
}

func init() {
	keysCmd.AddCommand(createKeyCmd)
	keysCmd.AddCommand(revokeKeyCmd)
	keysCmd.AddCommand(listKeysCmd)
	rootCmd.AddCommand(keysCmd)
}
