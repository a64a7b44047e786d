package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/occupancy"
	"github.com/trezcool/hostel/core/user"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf   *core.Config
	db     *sqlx.DB
	occSvc *occupancy.Service
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]          - run a goose command (up, down, status, ...) on the embedded migrations")
	fmt.Fprintln(cli.out, "  reconcile [-dry-run]            - recompute every room's occupancy from the student profiles")
	fmt.Fprintln(cli.out, "  token -id ID -role ROLE [-ttl]  - sign an access token for a user")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	reconcileCmd := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	reconcileCmd.SetOutput(cli.out)
	reconcileDryRun := reconcileCmd.Bool("dry-run", false, "Report what would change without writing it.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenID := tokenCmd.String("id", "", "The user's ID; for students, the ID keying their hostel profile.")
	tokenName := tokenCmd.String("name", "", "The user's display name.")
	tokenEmail := tokenCmd.String("email", "", "The user's email.")
	tokenRoles := tokenCmd.String("role", "", "Comma separated roles: "+strings.Join(user.AllRoles, ", ")+".")
	tokenTTL := tokenCmd.Duration("ttl", 24*time.Hour, "How long the token stays valid.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])
	case "reconcile":
		if err := reconcileCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.reconcile(ctx, *reconcileDryRun)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		p := user.Principal{
			ID:    core.CleanString(*tokenID),
			Name:  core.CleanString(*tokenName),
			Email: core.CleanString(*tokenEmail, true /* lower */),
			Roles: user.CleanRoles(strings.Split(*tokenRoles, ",")),
		}
		if p.ID == "" || len(p.Roles) == 0 || *tokenTTL <= 0 {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(p, *tokenTTL)
	default:
		cli.printUsage()
		return errHelp
	}
}
