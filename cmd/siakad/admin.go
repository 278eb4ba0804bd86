package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/app"
	"github.com/Spok95/siakad/internal/backupclient"
	"github.com/Spok95/siakad/internal/db"
	"github.com/Spok95/siakad/internal/models"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or inspect database migrations",
}

func migrateAction(use, short string, fn func(*sqlx.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()
			database, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			return fn(database)
		},
	}
}

var (
	tokenTTL time.Duration

	newUser struct {
		username, first, last, email, kind string
		regNo, phone                       string
	}
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an access token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || uid <= 0 {
			return fmt.Errorf("bad user id %q", args[0])
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()
		tok, err := app.IssueToken([]byte(e.cfg.JWTSecret), uid, tokenTTL, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage login identities",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user; upt_tik users also get their operator profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !access.Kind(newUser.kind).Valid() {
			return fmt.Errorf("unknown kind %q", newUser.kind)
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()
		database, err := e.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		var uid int64
		err = db.InTx(cmd.Context(), database, func(tx *sqlx.Tx) error {
			var err error
			uid, err = db.CreateUser(cmd.Context(), tx, models.User{
				Username:  newUser.username,
				FirstName: newUser.first,
				LastName:  newUser.last,
				Email:     newUser.email,
				Kind:      newUser.kind,
			})
			if err != nil || access.Kind(newUser.kind) != access.KindSystemAdmin {
				return err
			}
			_, err = db.CreateSystemAdminProfile(cmd.Context(), tx, models.SystemAdminProfile{
				RegNo:  newUser.regNo,
				Phone:  newUser.phone,
				UserID: uid,
			})
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), uid)
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Talk to the database backup sidecar",
}

func backupAction(use, short string, fn func(*backupclient.Client) func(ctx context.Context) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()
			out, err := fn(backupclient.New(e.cfg.BackupURL))(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func init() {
	migrateCmd.AddCommand(
		migrateAction("up", "Apply all pending migrations", func(d *sqlx.DB) error { return db.Migrate(d.DB) }),
		migrateAction("down", "Roll back the latest migration", func(d *sqlx.DB) error { return db.MigrateDown(d.DB) }),
		migrateAction("status", "Print migration status", func(d *sqlx.DB) error { return db.MigrateStatus(d.DB) }),
	)

	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	f := userAddCmd.Flags()
	f.StringVar(&newUser.username, "username", "", "login name")
	f.StringVar(&newUser.first, "first-name", "", "first name")
	f.StringVar(&newUser.last, "last-name", "", "last name")
	f.StringVar(&newUser.email, "email", "", "e-mail")
	f.StringVar(&newUser.kind, "kind", string(access.KindSystemAdmin), "upt_tik, staff_prodi, dosen or mahasiswa")
	f.StringVar(&newUser.regNo, "no-induk", "", "operator registration number (upt_tik)")
	f.StringVar(&newUser.phone, "no-hp", "", "operator phone (upt_tik)")
	_ = userAddCmd.MarkFlagRequired("username")
	userCmd.AddCommand(userAddCmd)

	backupCmd.AddCommand(
		backupAction("run", "Create a fresh dump", func(c *backupclient.Client) func(context.Context) (string, error) {
			return c.TriggerBackup
		}),
		backupAction("restore-latest", "Restore the newest dump", func(c *backupclient.Client) func(context.Context) (string, error) {
			return c.RestoreLatest
		}),
	)
}
