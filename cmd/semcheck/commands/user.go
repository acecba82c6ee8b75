package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/semcheck/internal/auth"
	"git.home.luguber.info/inful/semcheck/internal/store"
)

// UserCmd groups account management subcommands.
type UserCmd struct {
	Add UserAddCmd `cmd:"" help:"Create a user account"`
}

// UserAddCmd implements 'user add'.
type UserAddCmd struct {
	Email    string `required:"" help:"Account email"`
	Password string `required:"" help:"Account password" env:"SEMCHECK_PASSWORD"`
}

// Run executes the user add command.
func (u *UserAddCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return u.run(context.Background(), os.Stdout, auth.NewManager(st, nil, auth.WithLogger(logger(g))))
}

func (u *UserAddCmd) run(ctx context.Context, w io.Writer, m *auth.Manager) error {
	user, err := m.Register(ctx, auth.RegisterRequest{
		Email:                u.Email,
		Password:             u.Password,
		PasswordConfirmation: u.Password,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Created user %s (%s)\n", user.Email, user.ID)
	return err
}
