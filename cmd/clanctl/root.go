package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"infinite-experiment/clanhall/internal/api"
	"infinite-experiment/clanhall/internal/config"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/models"
	"infinite-experiment/clanhall/internal/services"
)

var (
	guildID   string
	actorID   string
	serverURL string
	apiKey    string
	offline   bool
)

var errNoWriteMode = errors.New("this command changes data: pass --server (with --api-key) to go through the running server, or --offline if the server is stopped")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clanctl",
	Short: "Clanhall admin CLI",
	Long: `Clanhall admin CLI for API keys and clan maintenance.

Read-only commands open the store configured through the same environment
as the server (STORE_BACKEND, DATA_DIR, DATABASE_DSN, REDIS_ADDR).

Commands that change data go through the admin API of a running server when
--server is set. A server caches whole collections and writes them back, so
direct store writes made while it runs are lost on its next write. --offline
writes the store directly and must only be used while the server is stopped.
API keys can only be created or revoked offline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	logging.Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&guildID, "guild", "", "Discord server ID to operate on")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "clanctl", "User ID recorded in the audit log")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", os.Getenv("CLANHALL_SERVER_URL"), "Base URL of the running server")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("CLANHALL_API_KEY"), "API key used with --server")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Write the store directly; the server must be stopped")
}

// writeClient picks how a mutating command reaches the data. It returns a
// client when --server is set and nil when --offline is set.
func writeClient() (*adminClient, error) {
	switch {
	case serverURL != "" && offline:
		return nil, errors.New("--server and --offline are mutually exclusive")
	case serverURL != "":
		if apiKey == "" {
			return nil, errors.New("--api-key (or CLANHALL_API_KEY) is required with --server")
		}
		if guildID == "" {
			return nil, errors.New("--guild is required with --server")
		}
		return newAdminClient(serverURL, apiKey, guildID, actorID), nil
	case offline:
		return nil, nil
	default:
		return nil, errNoWriteMode
	}
}

// requireOffline guards commands that have no admin route.
func requireOffline(name string) error {
	if !offline {
		return fmt.Errorf("%s writes the store directly: stop the server and pass --offline", name)
	}
	return nil
}

// openDeps builds the same dependency graph as the server, with a private
// metrics registry.
func openDeps(ctx context.Context) (*api.Dependencies, error) {
	specs, err := config.Load()
	if err != nil {
		return nil, err
	}
	deps, err := api.InitDependencies(ctx, specs, prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return deps, nil
}

func adminActor() (services.Actor, error) {
	if guildID == "" {
		return services.Actor{}, fmt.Errorf("--guild is required")
	}
	return services.Actor{GuildID: models.ID(guildID), UserID: models.ID(actorID), IsAdmin: true}, nil
}
