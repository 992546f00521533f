package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benvon/sailor-swift/internal/database"
	"github.com/benvon/sailor-swift/internal/models"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
)

type ratelimitStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
	Reset(ctx context.Context) (bool, error)
}

// NewRatelimitCmd creates the ratelimit configuration command with list, set and reset subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List, update or reset the sign-in rate limit (e.g. 5-S, 100-M). Stored in database; the API reloads it every minute.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	cmd.AddCommand(newRatelimitResetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current rate limit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return runRatelimitList(cmd.Context(), database.NewRatelimitConfigRepository(db), cmd.OutOrStdout())
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set rate limit configuration",
		Long:  "Update rate limit (e.g. 5-S, 100-M, 1000-H). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if err := validateRate(rate); err != nil {
				return err
			}
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return runRatelimitSet(cmd.Context(), database.NewRatelimitConfigRepository(db), rate, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	return cmd
}

func newRatelimitResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove the stored rate limit",
		Long:  "Delete the stored rate so the API falls back to RATE_LIMIT_DEFAULT on its next reload.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return runRatelimitReset(cmd.Context(), database.NewRatelimitConfigRepository(db), cmd.OutOrStdout())
		},
	}
}

// validateRate rejects rates the API could not parse, so a typo never reaches the database.
func validateRate(rate string) error {
	if rate == "" {
		return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
	}
	if _, err := limiter.NewRateFromFormatted(rate); err != nil {
		return fmt.Errorf("invalid rate %q: %w", rate, err)
	}
	return nil
}

func runRatelimitList(ctx context.Context, repo ratelimitStore, out io.Writer) error {
	c, err := repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("get ratelimit config: %w", err)
	}
	if c == nil {
		fmt.Fprintln(out, "No rate limit configuration in database. Use 'ratelimit set' to add one.")
		return nil
	}
	fmt.Fprintln(out, "Rate limit configuration:")
	fmt.Fprintf(out, "  Scope:   %s\n", c.Scope)
	fmt.Fprintf(out, "  Rate:    %s\n", c.Rate)
	fmt.Fprintf(out, "  Updated: %s\n", c.UpdatedAt.UTC().Format(time.RFC3339))
	return nil
}

func runRatelimitSet(ctx context.Context, repo ratelimitStore, rate string, out io.Writer) error {
	if err := repo.Set(ctx, &models.RatelimitConfig{Rate: rate}); err != nil {
		return fmt.Errorf("set ratelimit config: %w", err)
	}
	fmt.Fprintln(out, "Rate limit configuration updated.")
	return nil
}

func runRatelimitReset(ctx context.Context, repo ratelimitStore, out io.Writer) error {
	existed, err := repo.Reset(ctx)
	if err != nil {
		return err
	}
	if !existed {
		fmt.Fprintln(out, "No rate limit configuration to reset.")
		return nil
	}
	fmt.Fprintln(out, "Rate limit configuration removed; the API will use RATE_LIMIT_DEFAULT.")
	return nil
}
