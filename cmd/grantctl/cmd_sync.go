package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grantmatch-backend-go/internal/core"
)

var syncReverse bool

// syncTiersCmd reconciles account and startup tiers in bulk.
var syncTiersCmd = &cobra.Command{
	Use:   "sync-tiers",
	Short: "Reconcile every account tier with its startup profile",
	Long: `Push each account's tier onto its startup profile.

With --reverse, push each startup's tier back onto its account instead.`,
	RunE: runSyncTiers,
}

func init() {
	syncTiersCmd.Flags().BoolVar(&syncReverse, "reverse", false, "copy startup tiers onto accounts")
}

func runSyncTiers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	syncer := core.NewTierSynchronizer(e.stores.Accounts, e.stores.Startups, e.logger)
	report, err := core.ReconcileAllTiers(ctx, e.stores.Accounts, e.stores.Startups, syncer, syncReverse, e.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: checked %d, updated %d, missing %d, failed %d\n",
		report.Direction, report.Checked, report.Updated, report.Missing, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d tier synchronizations failed", report.Failed)
	}
	return nil
}
