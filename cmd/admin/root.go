package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/recon2root/eventsite/internal/config"
	"github.com/recon2root/eventsite/internal/database"
	"github.com/recon2root/eventsite/internal/repository"
	"github.com/recon2root/eventsite/internal/service"
	"github.com/recon2root/eventsite/internal/util"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Recon2Root admin tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newHashPasswordCmd())
	return rootCmd
}

func newSetupCmd() *cobra.Command {
	var (
		username    string
		databaseURL string
		hashCost    int
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the admin credential or change its password",
		Long: "Prompts for a username (unless --username is given) and a password, " +
			"then creates or updates the admin credential. Migrations are applied first.",
		Example: `  # Interactive setup against the default SQLite database
  admin setup

  # Non-interactive, password read from stdin
  echo 's3cret' | admin setup --username admin --database-url postgres://localhost/recon2root`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompt := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

			if username == "" {
				var err error
				if username, err = prompt.line("Enter admin username: "); err != nil {
					return err
				}
			}
			password, err := prompt.secret("Enter admin password: ")
			if err != nil {
				return err
			}
			if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
				return errors.New("username and password cannot be empty")
			}

			db, err := database.Connect(databaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(); err != nil {
				return err
			}

			creds := service.NewCredentialService(repository.NewAdminRepository(db.DB), hashCost)
			created, err := creds.Set(context.Background(), username, password)
			if err != nil {
				return err
			}

			username = strings.TrimSpace(username)
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin user %q created.\n", username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin password updated for %q.\n", username)
			}
			return nil
		},
	}

	defaultURL := os.Getenv("DATABASE_URL")
	if defaultURL == "" {
		defaultURL = config.DefaultDatabaseURL
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "admin username (prompted when empty)")
	cmd.Flags().StringVar(&databaseURL, "database-url", defaultURL, "database URL (defaults to $DATABASE_URL)")
	cmd.Flags().IntVar(&hashCost, "cost", config.PasswordHashCost, "bcrypt cost")
	_ = cmd.Flags().MarkHidden("cost")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := util.HashPassword(args[0], config.PasswordHashCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// prompter reads answers from in. Secrets are read without echo when in is
// a terminal.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, reader: bufio.NewReader(in), out: out}
}

func (p *prompter) line(question string) (string, error) {
	fmt.Fprint(p.out, question)
	answer, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && answer != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimRight(answer, "\r\n"), nil
}

func (p *prompter) secret(question string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.line(question)
	}

	fmt.Fprint(p.out, question)
	answer, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(answer), nil
}
