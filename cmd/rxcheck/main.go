package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rxcheck/rxcheck/internal/config"
	"github.com/rxcheck/rxcheck/internal/domain/clinician"
	"github.com/rxcheck/rxcheck/internal/domain/prescription"
	"github.com/rxcheck/rxcheck/internal/platform/auth"
	"github.com/rxcheck/rxcheck/internal/platform/db"
	"github.com/rxcheck/rxcheck/migrations"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rxcheck",
		Short:        "Prescription drafting and evaluation service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(tokenCmd())
	return rootCmd
}

// loadConfig loads configuration and a logger writing to out.
func loadConfig(out io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, newLogger(cfg.Env, out), nil
}

// withApp loads configuration, builds the services and runs fn with them.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, logger, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	return fn(ctx, a)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations for the postgres store",
	}

	withMigrator := func(cmd *cobra.Command, fn func(ctx context.Context, m *db.Migrator, schema string) error) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		schema, _ := cmd.Flags().GetString("schema")
		if schema == "" {
			schema = cfg.DBSchema
		}

		ctx := context.Background()
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, "", cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return err
		}
		defer pool.Close()
		return fn(ctx, db.NewMigrator(pool, migrations.FS), schema)
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator, schema string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", schema)
				count, err := m.Up(ctx, schema)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("schema", "", "Target schema (default DB_SCHEMA)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator, schema string) error {
				statuses, err := m.Status(ctx, schema)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				printMigrationStatus(cmd.OutOrStdout(), schema, statuses)
				return nil
			})
		},
	}
	statusCmd.Flags().String("schema", "", "Target schema (default DB_SCHEMA)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printMigrationStatus(w io.Writer, schema string, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "Migration status for schema: %s\n", schema)
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Validate and score a prescription JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			strategyFlag, _ := cmd.Flags().GetString("strategy")
			save, _ := cmd.Flags().GetBool("save")

			strategy, err := prescription.ParseStrategy(strategyFlag)
			if err != nil {
				return err
			}
			var p prescription.Prescription
			if err := readJSONFile(file, &p); err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				result, err := a.prescriptions.Evaluate(ctx, p, strategy)
				if err != nil {
					return err
				}
				if save {
					saved, err := a.prescriptions.Finalize(ctx, result.StructuredOutput)
					if err != nil {
						return err
					}
					a.logger.Info().Str("id", saved.ID).Msg("prescription saved")
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().String("file", "", "Prescription JSON file")
	cmd.Flags().String("strategy", "", "Evaluation strategy: local or remote (default EVALUATOR)")
	cmd.Flags().Bool("save", false, "Save the structured output to the history")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the medicine catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				res := a.catalog.Search(ctx, strings.Join(args, " "))
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "source: %s\n", res.Source)
				for _, m := range res.Results {
					fmt.Fprintf(w, "%-40s %-10s %-10s %.2f\n", m.Name, m.Type, m.Strength, m.Score)
				}
				fmt.Fprintf(w, "custom: %s\n", res.Custom.Name)
				return nil
			})
		},
	}
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the clinician profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.clinicians.Get(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			})
		},
	})

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Save the clinician profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var p clinician.Profile
			p.DoctorName, _ = cmd.Flags().GetString("doctor")
			p.ClinicName, _ = cmd.Flags().GetString("clinic")
			p.ClinicAddress, _ = cmd.Flags().GetString("address")
			p.ContactInfo, _ = cmd.Flags().GetString("contact")
			return withApp(cmd, func(ctx context.Context, a *app) error {
				saved, err := a.clinicians.Save(ctx, p)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), saved)
			})
		},
	}
	setCmd.Flags().String("doctor", "", "Doctor name")
	setCmd.Flags().String("clinic", "", "Clinic name")
	setCmd.Flags().String("address", "", "Clinic address")
	setCmd.Flags().String("contact", "", "Contact details")
	cmd.AddCommand(setCmd)

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase the profile and every saved prescription",
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("reset erases all local data; pass --yes to confirm")
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.clinicians.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All data cleared.")
				return nil
			})
		},
	}
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
	cmd.AddCommand(resetCmd)

	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved prescriptions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			return withApp(cmd, func(ctx context.Context, a *app) error {
				items, total, err := a.prescriptions.History(ctx, limit, offset)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%d saved prescription(s)\n", total)
				for _, p := range items {
					fmt.Fprintf(w, "%s  %s  %-24s %3d  %s\n",
						p.ID, p.Date.Format("2006-01-02 15:04"), p.Patient.Name, p.Meta.Score, p.Meta.Rating)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of prescriptions to list")
	cmd.Flags().Int("offset", 0, "Number of prescriptions to skip")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render an evaluation result as a PDF report",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			out, _ := cmd.Flags().GetString("out")

			doc, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			if !json.Valid(doc) {
				return fmt.Errorf("%s is not valid JSON", file)
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				pdf, err := a.analysis.GeneratePDF(ctx, json.RawMessage(doc))
				if err != nil {
					return err
				}
				if out == "" {
					out = filepath.Base(pdf.FileName)
				}
				if err := os.WriteFile(out, pdf.Content, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s (%d bytes)\n", out, len(pdf.Content))
				return nil
			})
		},
	}
	cmd.Flags().String("file", "", "Evaluation result JSON file")
	cmd.Flags().String("out", "", "Output PDF path (default: name suggested by the backend)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a clinician device",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			roles, _ := cmd.Flags().GetStringSlice("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AuthSigningKey == "" {
				return fmt.Errorf("AUTH_SIGNING_KEY is required to issue tokens")
			}
			token, err := auth.IssueToken(auth.JWTConfig{
				Issuer:     cfg.AuthIssuer,
				Audience:   cfg.AuthAudience,
				SigningKey: []byte(cfg.AuthSigningKey),
			}, subject, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("subject", "", "Device identifier")
	cmd.Flags().StringSlice("role", []string{auth.RoleClinician}, "Roles granted to the device")
	cmd.Flags().Duration("ttl", 90*24*time.Hour, "Token lifetime (0 for no expiry)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func readJSONFile(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
