package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/geocoder89/plantdoctor/internal/accounts"
	"github.com/geocoder89/plantdoctor/internal/config"
	"github.com/geocoder89/plantdoctor/internal/db"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/geocoder89/plantdoctor/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v3"
)

func main() {
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	if err := newCommand(cfg, log).Run(context.Background(), os.Args); err != nil {
		log.Error("manage failed", "err", err)
		os.Exit(1)
	}
}

func newCommand(cfg config.Config, log *slog.Logger) *cli.Command {
	withPool := func(ctx context.Context, cmd *cli.Command, fn func(*pgxpool.Pool) error) error {
		pool, err := db.NewPool(ctx, cmd.String("database-url"), 2)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()
		return fn(pool)
	}

	migrate := func(dir db.Direction) *cli.Command {
		return &cli.Command{
			Name:  string(dir),
			Usage: "goose " + string(dir),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withPool(ctx, cmd, func(pool *pgxpool.Pool) error {
					if err := db.Migrate(ctx, pool, dir); err != nil {
						return err
					}
					log.Info("migrations done", "direction", dir)
					return nil
				})
			},
		}
	}

	return &cli.Command{
		Name:  "manage",
		Usage: "Plant Doctor operator tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Value:   cfg.DBURL,
				Usage:   "Postgres connection string",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:     "migrate",
				Usage:    "Apply or inspect schema migrations",
				Commands: []*cli.Command{migrate(db.Up), migrate(db.Down), migrate(db.Status)},
			},
			{
				Name:  "sweep-reset-tokens",
				Usage: "Delete expired password reset tokens",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withPool(ctx, cmd, func(pool *pgxpool.Pool) error {
						svc := accounts.New(
							postgres.NewUsersRepo(pool, nil),
							postgres.NewResetTokensRepo(pool, nil),
							nil, nil,
							accounts.WithLogger(log),
						)
						n, err := svc.SweepExpired(ctx)
						if err != nil {
							return err
						}
						log.Info("reset tokens swept", "count", n)
						return nil
					})
				},
			},
			{
				Name:  "ensure-admin",
				Usage: "Create or promote the ADMIN_EMAIL account",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
						return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
					}
					return withPool(ctx, cmd, func(pool *pgxpool.Pool) error {
						changed, err := db.EnsureAdminUser(ctx, postgres.NewUsersRepo(pool, nil), cfg)
						if err != nil {
							return err
						}
						log.Info("admin ensured", "email", cfg.AdminEmail, "changed", changed)
						return nil
					})
				},
			},
		},
	}
}
