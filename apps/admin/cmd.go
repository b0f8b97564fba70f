package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezcool/repostnet/apps"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	deps *apps.Deps
	out  io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "RepostNet administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	migrateCmd := &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command (up, down, status, ...)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.migrate(args)
		},
	}
	migrateCmd.DisableFlagParsing = true

	var (
		tags         []string
		minFollowers int
	)
	candidatesCmd := &cobra.Command{
		Use:   "candidates",
		Short: "List the eligible supporters matching the tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.candidates(cmd.Context(), tags, minFollowers)
		},
	}
	candidatesCmd.Flags().StringSliceVar(&tags, "tag", nil, "genre or group tag (repeatable)")
	candidatesCmd.Flags().IntVar(&minFollowers, "min-followers", 0, "minimum follower count")

	searchCmd := &cobra.Command{
		Use:   "search PREFIX",
		Short: "Search eligible supporters by name prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.search(cmd.Context(), args[0])
		},
	}

	suggestCmd := &cobra.Command{
		Use:   "suggest SUBMISSION_ID",
		Short: "Suggest supporters for a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.suggest(cmd.Context(), args[0])
		},
	}

	var scheduleDate string
	confirmCmd := &cobra.Command{
		Use:   "confirm SUBMISSION_ID MEMBER_ID...",
		Short: "Save the supporters of a submission",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.confirm(cmd.Context(), args[0], args[1:], scheduleDate)
		},
	}
	confirmCmd.Flags().StringVar(&scheduleDate, "schedule-date", "", "trigger the schedule generation for this date (YYYY-MM-DD)")

	root.AddCommand(migrateCmd, candidatesCmd, searchCmd, suggestCmd, confirmCmd)
	return root
}

// run executes the command line; args include the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) < 2 {
		_ = root.Usage()
		return errHelp
	}
	root.SetArgs(args[1:])
	return root.ExecuteContext(context.Background())
}
