package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"grantmatch-backend-go/internal/seed"
)

var seedFile string

// seedCmd loads grants, soft approvals, coupons and an admin from YAML.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load grants, soft approvals, coupons and an admin from a YAML file",
	RunE:  runSeed,
}

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

// createAdminCmd creates an admin account unless the email already exists.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE:  runCreateAdmin,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed file (defaults to SEED_FILE)")

	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (min 6 characters)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	path := seedFile
	if path == "" {
		path = e.cfg.SeedFile
	}
	if path == "" {
		return errors.New("no seed file: pass --file or set SEED_FILE")
	}

	file, err := seed.Load(path)
	if err != nil {
		return err
	}
	res, err := seed.Apply(ctx, file, e.stores.Catalog, e.stores.Accounts, e.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d grants, %d soft approvals, %d coupons (admin created: %t)\n",
		res.Grants, res.SoftApprovals, res.Coupons, res.AdminCreated)
	return nil
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	admin, created, err := seed.EnsureAdmin(ctx, e.stores.Accounts, adminName, adminEmail, adminPassword)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(cmd.OutOrStdout(), "account %s already exists with tier %s\n", admin.Email, admin.Tier)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", admin.Email, admin.ID)
	return nil
}
