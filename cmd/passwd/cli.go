package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MKhiriev/go-gatekeeper/internal/store"
)

const usage = `usage: passwd [-p file] [-c config] <command> [user]

commands:
  init            create an empty password file
  add <user>      add a user
  change <user>   change the password of a user
  check <user>    verify the password of a user
  list            list users
`

var (
	errUsage            = errors.New("invalid usage")
	errPasswordMismatch = errors.New("passwords do not match")
	errEmptyPassword    = errors.New("password must not be empty")
	errWrongPassword    = errors.New("wrong username or password")
)

type cli struct {
	path         string
	store        store.CredentialStore
	readPassword func(prompt string) (string, error)
	out          io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "init":
		if len(rest) != 0 {
			return errUsage
		}
		if err := store.Create(c.path); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "created %s\n", c.path)
		return nil
	case "list":
		if len(rest) != 0 {
			return errUsage
		}
		return c.list(ctx)
	case "add", "change", "check":
		if len(rest) != 1 {
			return errUsage
		}
		return c.userCommand(ctx, cmd, rest[0])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (c *cli) userCommand(ctx context.Context, cmd, user string) error {
	switch cmd {
	case "add":
		password, err := c.newPassword()
		if err != nil {
			return err
		}
		if err := c.store.AddUser(ctx, user, password); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "user %s added\n", user)
	case "change":
		exists, err := c.store.UserExists(ctx, user)
		if err != nil {
			return err
		}
		if !exists {
			return store.ErrUserNotFound
		}
		password, err := c.newPassword()
		if err != nil {
			return err
		}
		if err := c.store.ChangePassword(ctx, user, password); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "password of %s changed\n", user)
	case "check":
		password, err := c.readPassword("Password: ")
		if err != nil {
			return err
		}
		ok, err := c.store.Verify(ctx, user, password)
		if err != nil {
			return err
		}
		if !ok {
			return errWrongPassword
		}
		fmt.Fprintln(c.out, "password OK")
	}

	return nil
}

func (c *cli) list(ctx context.Context) error {
	users, err := c.store.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintln(c.out, u)
	}
	return nil
}

// newPassword asks for a password twice.
func (c *cli) newPassword() (string, error) {
	first, err := c.readPassword("New password: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", errEmptyPassword
	}

	second, err := c.readPassword("Retype new password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}

	return first, nil
}
