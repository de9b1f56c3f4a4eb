package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Agrid-Dev/heatload/internal/storage/postgres"
)

func (c *cli) historyCmd() *cobra.Command {
	var (
		limit int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded calculation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.Storage.PostgresDSN == "" {
				return errors.New("history needs storage.postgres_dsn (HEATLOAD_STORAGE_POSTGRES_DSN)")
			}
			ctx := cmd.Context()
			db, err := postgres.Open(ctx, c.cfg.Storage.PostgresDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			projectID := c.cfg.ProjectID
			if all {
				projectID = ""
			}
			runs, err := postgres.NewRunRepository(db).List(ctx, projectID, limit)
			if err != nil {
				return err
			}
			printRuns(c, runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")
	cmd.Flags().BoolVar(&all, "all", false, "list runs of every project")
	return cmd
}

func printRuns(c *cli, runs []postgres.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No recorded runs.")
		return
	}
	fmt.Fprintf(c.out, "%-36s  %-20s  %-16s  %5s  %12s\n", "RUN", "CREATED (UTC)", "PROJECT", "ROOMS", "TOTAL [kW]")
	for _, r := range runs {
		fmt.Fprintf(c.out, "%-36s  %-20s  %-16s  %5d  %12.3f\n",
			r.ID,
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			r.ProjectID,
			r.RoomCount,
			r.TotalHeatLoadW/1000,
		)
	}
}
