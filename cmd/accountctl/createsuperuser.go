package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dmitrijs2005/researchdt/internal/logging"
	"github.com/dmitrijs2005/researchdt/internal/server/apierror"
	"github.com/dmitrijs2005/researchdt/internal/server/models"
	"github.com/dmitrijs2005/researchdt/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/researchdt/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type superuserCreator interface {
	CreateSuperuser(ctx context.Context, in services.CreateInput) (*models.Account, error)
}

type superuserOptions struct {
	email  string
	name   string
	gender string
	locale string
	os     string
}

// NewCreateSuperuserCmd creates the createsuperuser subcommand.
func NewCreateSuperuserCmd() *cobra.Command {
	opts := superuserOptions{}

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff superuser",
		Long: `Create a staff superuser together with its profile records.
The password is read from the terminal without echo.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := services.NewAccountService(db, repomanager.NewPostgresRepositoryManager(), logging.Discard())
			return runCreateSuperuser(cmd, svc, opts)
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "superuser email (prompted when empty)")
	cmd.Flags().StringVar(&opts.name, "name", "admin", "display name")
	cmd.Flags().StringVar(&opts.gender, "gender", string(models.GenderMale), "gender (male|female)")
	cmd.Flags().StringVar(&opts.locale, "locale", string(models.LocaleEN), "locale (en|ua|ru)")
	cmd.Flags().StringVar(&opts.os, "os", string(models.OSUnknown), "operating system (ios|android|unknown)")

	return cmd
}

func runCreateSuperuser(cmd *cobra.Command, svc superuserCreator, opts superuserOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	in := services.CreateInput{
		Email:      strings.TrimSpace(opts.email),
		Info:       models.Info{Name: opts.name, Gender: models.Gender(opts.gender)},
		Settings:   models.Settings{Locale: models.Locale(opts.locale)},
		SystemInfo: models.SystemInfo{OS: models.OS(opts.os)},
	}
	if !in.Info.Gender.Valid() || !in.Settings.Locale.Valid() || !in.SystemInfo.OS.Valid() {
		return errors.New("invalid gender, locale or os")
	}

	if in.Email == "" {
		fmt.Fprint(out, "Email: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read email: %w", err)
		}
		in.Email = strings.TrimSpace(line)
	}

	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}
	again, err := promptPassword(cmd, "Password (again): ")
	if err != nil {
		return err
	}
	if password != again {
		return errors.New("passwords didn't match")
	}
	in.Password = password

	acc, err := svc.CreateSuperuser(ctx, in)
	if err != nil {
		var apiErr *apierror.Error
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			return errors.New(describeFields(apiErr.Fields))
		}
		return err
	}

	fmt.Fprintf(out, "Superuser created: %s (%s)\n", acc.User.Email, acc.User.ID)
	return nil
}

func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, prompt)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func describeFields(fields map[string]apierror.Detail) string {
	paths := make([]string, 0, len(fields))
	for p := range fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	msgs := make([]string, 0, len(paths))
	for _, p := range paths {
		msgs = append(msgs, fmt.Sprintf("%s: %s", p, fields[p].Message))
	}
	return strings.Join(msgs, "; ")
}
