package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/benvon/sailor-swift/internal/database"
	"github.com/benvon/sailor-swift/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type userAdmin interface {
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	SetActive(ctx context.Context, email string, active bool) error
}

type userLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type eventLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuthEvent, error)
}

// NewUsersCmd creates the users command with list, events, activate and deactivate subcommands.
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage user accounts",
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersEventsCmd())
	cmd.AddCommand(newUsersSetActiveCmd("activate", "Allow a user to sign in", true))
	cmd.AddCommand(newUsersSetActiveCmd("deactivate", "Block a user from signing in", false))
	return cmd
}

func newUsersListCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return runUsersList(cmd.Context(), database.NewUserRepository(db), limit, offset, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of users to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of users to skip")
	return cmd
}

func newUsersEventsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events <email>",
		Short: "Show recent authentication events for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return runUsersEvents(cmd.Context(), database.NewUserRepository(db), database.NewAuthEventRepository(db), args[0], limit, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events to show")
	return cmd
}

func newUsersSetActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return runUsersSetActive(cmd.Context(), database.NewUserRepository(db), args[0], active, cmd.OutOrStdout())
		},
	}
}

func runUsersList(ctx context.Context, repo userAdmin, limit, offset int, out io.Writer) error {
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}
	users, err := repo.List(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Fprintln(out, "No users found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tUSERNAME\tLOGIN\tACTIVE\tVERIFIED")
	for _, u := range users {
		username := "-"
		if u.Username != nil {
			username = *u.Username
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n", u.ID, u.Email, username, loginMethods(u), u.IsActive, u.IsVerified)
	}
	return tw.Flush()
}

func runUsersEvents(ctx context.Context, users userLookup, events eventLister, email string, limit int, out io.Writer) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := users.GetByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("no user with email %s", email)
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	list, err := events.ListByUser(ctx, user.ID, limit)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintf(out, "No events recorded for %s\n", email)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tEVENT\tMETADATA")
	for _, e := range list {
		metadata := "-"
		if len(e.Metadata) > 0 {
			metadata = string(e.Metadata)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CreatedAt.UTC().Format(time.RFC3339), e.EventType, metadata)
	}
	return tw.Flush()
}

func runUsersSetActive(ctx context.Context, repo userAdmin, email string, active bool, out io.Writer) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := repo.SetActive(ctx, email, active); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("no user with email %s", email)
		}
		return fmt.Errorf("update user: %w", err)
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Fprintf(out, "User %s %s.\n", email, state)
	return nil
}

// loginMethods names the sign-in methods linked to the account.
func loginMethods(u *models.User) string {
	var methods []string
	if u.HasPassword() {
		methods = append(methods, "password")
	}
	if u.GoogleID != nil {
		methods = append(methods, "google")
	}
	if u.WalletAddress != nil {
		methods = append(methods, "wallet")
	}
	if len(methods) == 0 {
		return "-"
	}
	return strings.Join(methods, ",")
}
