package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"infinite-experiment/clanhall/internal/models"
)

var clansCmd = &cobra.Command{
	Use:   "clans",
	Short: "Inspect and maintain clans",
}

var listClansCmd = &cobra.Command{
	Use:   "list",
	Short: "List the clans of a guild",
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := adminActor()
		if err != nil {
			return err
		}
		ctx := context.Background()
		deps, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		clans, err := deps.Services.Clans.ListClans(ctx, actor.GuildID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tTAG\tNAME\tLEADER\tMEMBERS\tBOUNTY\tPENDING_DISBAND")
		for _, c := range clans {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%v\n", c.ID, c.Tag, c.Name, c.LeaderID, c.MemberCount(), c.Bounty, c.HasPendingDisband())
		}
		w.Flush()
		return nil
	},
}

var forceDisbandCmd = &cobra.Command{
	Use:   "force-disband [name-or-tag]",
	Short: "Disband a clan immediately without approval",
	Long: `Disbands a clan without approval. Runs through the admin API with --server,
or against the store with --offline while the server is stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := writeClient()
		if err != nil {
			return err
		}
		ctx := context.Background()
		if client != nil {
			res, err := client.ForceDisband(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Clan disbanded: %s [%s], %d users reset\n", res.ClanName, res.ClanTag, res.UsersReset)
			return nil
		}

		actor, err := adminActor()
		if err != nil {
			return err
		}
		deps, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		res, err := deps.Services.Clans.ForceDisband(ctx, actor, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Clan disbanded: %s, %d users reset\n", res.Clan.Label(), res.UsersReset)
		return nil
	},
}

var resetUserCmd = &cobra.Command{
	Use:   "reset-user [user-id]",
	Short: "Clear a user's clan affiliation and pending invite",
	Long: `Resets one user. Runs through the admin API with --server, or against the
store with --offline while the server is stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := writeClient()
		if err != nil {
			return err
		}
		ctx := context.Background()
		if client != nil {
			if err := client.ResetUser(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("User reset: %s\n", args[0])
			return nil
		}

		actor, err := adminActor()
		if err != nil {
			return err
		}
		deps, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		if _, err := deps.Services.Clans.ResetUser(ctx, actor, models.ID(args[0])); err != nil {
			return err
		}

		fmt.Printf("User reset: %s\n", args[0])
		return nil
	},
}

func init() {
	clansCmd.AddCommand(listClansCmd)
	clansCmd.AddCommand(forceDisbandCmd)
	clansCmd.AddCommand(resetUserCmd)
	rootCmd.AddCommand(clansCmd)
}
