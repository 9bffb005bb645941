package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newMembersCmd(cli *commandLine) *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List the party members",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.members(cmd.Context())
		},
	}
}

func (cli *commandLine) members(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	members, err := cli.partySvc.Members(ctx)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}

	writer := tabwriter.NewWriter(cli.out, 2, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "NAME\tJOINED\tID")
	for _, m := range members {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", m.Name, m.CreatedAt.UTC().Format("2006-01-02 15:04"), m.ID)
	}
	return writer.Flush()
}
