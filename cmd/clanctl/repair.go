package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"infinite-experiment/clanhall/internal/models"
	"infinite-experiment/clanhall/internal/services"
)

var dryRun bool

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Reconcile clan rosters with user records",
	Long: `Runs the consistency repair. With --server it runs through the admin API
for --guild. With --offline it runs against the store, while the server is
stopped, for --guild or every guild in the store. With --dry-run the actions
are reported but nothing is written, so no mode flag is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := writeClient()
		if errors.Is(err, errNoWriteMode) && dryRun {
			client, err = nil, nil
		}
		if err != nil {
			return err
		}
		ctx := context.Background()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "GUILD\tRULE\tUSER\tCLAN\tDETAIL")

		var reports []*services.RepairReport
		if client != nil {
			report, err := client.Repair(ctx, dryRun)
			if err != nil {
				return err
			}
			reports = append(reports, report)
		} else {
			reports, err = repairLocal(ctx)
			if err != nil {
				return err
			}
		}

		total := printRepair(w, reports)
		w.Flush()

		verb := "applied"
		if dryRun {
			verb = "found"
		}
		fmt.Printf("%d repair actions %s across %d guilds\n", total, verb, len(reports))
		return nil
	},
}

func repairLocal(ctx context.Context) ([]*services.RepairReport, error) {
	deps, err := openDeps(ctx)
	if err != nil {
		return nil, err
	}
	defer deps.Close()

	guilds := []models.ID{models.ID(guildID)}
	if guildID == "" {
		guilds, err = deps.Services.Clans.GuildIDs(ctx)
		if err != nil {
			return nil, err
		}
	}

	reports := make([]*services.RepairReport, 0, len(guilds))
	for _, g := range guilds {
		report, err := deps.Services.Repair.RunGuild(ctx, g, dryRun)
		if err != nil {
			return nil, fmt.Errorf("repair of guild %s failed: %w", g, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func printRepair(w io.Writer, reports []*services.RepairReport) int {
	total := 0
	for _, report := range reports {
		for _, a := range report.Actions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", report.GuildID, a.Rule, a.UserID, a.ClanID, a.Detail)
		}
		total += len(report.Actions)
	}
	return total
}

func init() {
	repairCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without writing")
	rootCmd.AddCommand(repairCmd)
}
