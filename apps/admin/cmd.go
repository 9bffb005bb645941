package main

import (
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/tutorparty/core/party"
	"github.com/trezcool/tutorparty/core/usage"
	"github.com/trezcool/tutorparty/storage/database"
)

var (
	gooseRunFunc   = database.RunMigrations                                     // mockable
	isTerminalFunc = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) } // mockable
)

type commandLine struct {
	db       *sqlx.DB
	partySvc party.Service
	usageSvc usage.Service
	out      io.Writer
}

func newRootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Tutor Party administration",
		Long:         "Runs database migrations and reports the party members and their AI usage.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(cli.out)

	root.AddCommand(
		newMigrateCmd(cli),
		newUsageCmd(cli),
		newMembersCmd(cli),
	)
	return root
}
