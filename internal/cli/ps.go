// Package cli — ps.go implements the "researchctl ps" command.
//
// Ps lists the containers this tool started. Containers are recognized
// by their labels, so the listing survives daemon restarts and never
// shows unrelated containers.
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/researchctl/internal/docker"
)

// NewPsCommand creates the "ps" cobra command.
func NewPsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List API server containers started by this tool",
		Long: `List the containers started with "researchctl launch --container".

Stopped containers are included, so a crashed server is still visible
here until it is removed with "researchctl stop --remove".

Examples:
  researchctl ps
  researchctl ps --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPs(cmd)
		},
	}

	return cmd
}

// runPs lists managed containers in table or JSON form.
func runPs(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	launches, err := docker.ListLaunches(ctx, cli)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		printJSON(launches)
		return nil
	}

	if len(launches) == 0 {
		fmt.Println("No API server containers found.")
		fmt.Println("Start one with \"researchctl launch --container\".")
		return nil
	}

	// Tabwriter keeps the columns aligned regardless of name lengths.
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPROJECT\tENTRY POINT\tPORT\tSTATUS\tCREATED")
	for _, l := range launches {
		created := "-"
		if !l.CreatedAt.IsZero() {
			created = l.CreatedAt.Local().Format(time.RFC3339)
		}
		port := "-"
		if l.Port > 0 {
			port = fmt.Sprintf("%d", l.Port)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ContainerName, l.Project, l.EntryPoint, port, l.Status, created)
	}
	return w.Flush()
}
