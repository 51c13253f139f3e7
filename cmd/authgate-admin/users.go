package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/authgate/internal/data"
	domainauth "github.com/target/authgate/internal/domain/auth"
	"github.com/target/authgate/internal/service"
)

// userAdmin is the subset of service.UserAdmin the commands need.
type userAdmin interface {
	GetUser(ctx context.Context, email string) (domainauth.User, error)
	SetRole(ctx context.Context, email, role string) (domainauth.User, error)
}

var _ userAdmin = (*service.UserAdmin)(nil)

type setRoleOptions struct {
	Email   string
	Role    string
	Timeout time.Duration
}

type showUserOptions struct {
	Email   string
	JSON    bool
	Timeout time.Duration
}

func runSetRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseSetRoleFlags(args)
	if err != nil {
		return err
	}
	return withUserAdmin(cmdCtx, opts.Timeout, func(ctx context.Context, admin userAdmin) error {
		return setRole(ctx, cmdCtx.Out, admin, opts)
	})
}

func runShowUser(cmdCtx *commandContext, args []string) error {
	opts, err := parseShowUserFlags(args)
	if err != nil {
		return err
	}
	return withUserAdmin(cmdCtx, opts.Timeout, func(ctx context.Context, admin userAdmin) error {
		return showUser(ctx, cmdCtx.Out, admin, opts)
	})
}

func withUserAdmin(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, userAdmin) error,
) error {
	return withDatabase(cmdCtx, timeout, func(ctx context.Context, db *sql.DB) error {
		admin := service.NewUserAdmin(service.UserAdminOptions{
			Users:  data.NewUserRepo(db),
			Logger: cmdCtx.Logger,
		})
		return f(ctx, admin)
	})
}

func setRole(ctx context.Context, w io.Writer, admin userAdmin, opts setRoleOptions) error {
	user, err := admin.SetRole(ctx, opts.Email, opts.Role)
	if err != nil {
		return err
	}
	return writef(w, "%s is now %s\n", user.Email, user.Role)
}

func showUser(ctx context.Context, w io.Writer, admin userAdmin, opts showUserOptions) error {
	user, err := admin.GetUser(ctx, opts.Email)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(user)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", user.ID},
		{"Name", user.Name},
		{"Email", user.Email},
		{"Number", strconv.FormatInt(user.Number, 10)},
		{"Role", string(user.Role)},
		{"Created", user.CreatedAt.UTC().Format(time.RFC3339)},
		{"Updated", user.UpdatedAt.UTC().Format(time.RFC3339)},
	}
	for _, row := range rows {
		if err := writef(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func parseSetRoleFlags(args []string) (setRoleOptions, error) {
	fs := flag.NewFlagSet("set-role", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := setRoleOptions{}
	fs.StringVar(&opts.Email, "email", "", "Email of the user to update (required)")
	fs.StringVar(&opts.Role, "role", "", "New role: admin or normal (required)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return setRoleOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	opts.Role = strings.TrimSpace(opts.Role)

	switch {
	case opts.Email == "":
		return setRoleOptions{}, errors.New("--email is required")
	case opts.Role == "":
		return setRoleOptions{}, errors.New("--role is required")
	case opts.Timeout <= 0:
		return setRoleOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseShowUserFlags(args []string) (showUserOptions, error) {
	fs := flag.NewFlagSet("show-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := showUserOptions{}
	fs.StringVar(&opts.Email, "email", "", "Email of the user to show (required)")
	fs.BoolVar(&opts.JSON, "json", false, "Print the user as JSON")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return showUserOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)

	if opts.Email == "" {
		return showUserOptions{}, errors.New("--email is required")
	}
	if opts.Timeout <= 0 {
		return showUserOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}
