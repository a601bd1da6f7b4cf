package main

import (
	"context"
	"time"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.flagSet("login")
	email := fs.String("email", "", "Your email address. The password will be prompted next.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *email == "" {
		return usage(fs)
	}

	pwd, err := readPassword(cli.out)
	if err != nil {
		return err
	}
	if pwd == "" {
		return usage(fs)
	}

	s, err := cli.sessions.Login(ctx, *email, pwd)
	if err != nil {
		return err
	}
	cli.printf("Logged in as %s (%s)\n", s.User.Name, s.User.Role)
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.sessions.Logout(); err != nil {
		return err
	}
	cli.println("Logged out")
	return nil
}

func (cli *commandLine) whoami() error {
	s, err := cli.guard.Current()
	if err != nil {
		return err
	}
	cli.printf("%s <%s>\n", s.User.Name, s.User.Email)
	cli.printf("id:   %s\n", s.User.ID)
	cli.printf("role: %s\n", s.User.Role)
	if exp, ok := s.ExpiresAt(); ok {
		cli.printf("session expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}
