/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/jobnexus/apiserver/config"
	"github.com/jobnexus/apiserver/internal/db"
	"github.com/jobnexus/apiserver/internal/store"
	"github.com/jobnexus/apiserver/types"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// seedCmd creates the super-admin account if it does not exist yet. Safe
// to run on every deploy.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the super-admin account if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
			return errors.New("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
		}

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database failed: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		users := store.NewUserRepository(dbConn)
		if _, err := users.GetByEmail(cmd.Context(), cfg.Seed.AdminEmail); err == nil {
			fmt.Println("super-admin already exists")
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("lookup super-admin failed: %w", err)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password failed: %w", err)
		}

		created, err := users.Create(cmd.Context(), types.User{
			Email:        cfg.Seed.AdminEmail,
			Name:         "Super Admin",
			Role:         types.RoleSuperAdmin,
			Status:       types.AccountActive,
			PasswordHash: string(hashed),
		})
		if err != nil {
			return fmt.Errorf("create super-admin failed: %w", err)
		}

		fmt.Printf("created super-admin %s (id %d)\n", created.Email, created.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
