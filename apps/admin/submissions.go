package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/repostnet/core/submission"
)

func (cli *commandLine) suggest(ctx context.Context, id string) error {
	suggestion, err := cli.deps.SubmissionSvc.Suggest(ctx, id)
	if err != nil {
		return errors.Wrap(err, "suggesting supporters")
	}

	sel := suggestion.Selection
	fmt.Fprintf(cli.out, "submission: %s (%s)\n", suggestion.Submission.ID, suggestion.Submission.ArtistName)
	fmt.Fprintf(cli.out, "target: %d [%d - %d]\n", suggestion.Target.Reach, suggestion.Target.Min, suggestion.Target.Max)
	fmt.Fprintf(cli.out, "pool: %d candidates\n", len(suggestion.Pool))
	fmt.Fprintf(cli.out, "selected: %d supporters, reach %d (%s)\n", sel.Len(), sel.CumulativeReach, sel.BandStatus)
	return cli.printMembers(sel.Members)
}

func (cli *commandLine) confirm(ctx context.Context, id string, memberIDs []string, scheduleDate string) error {
	sub, err := cli.deps.SubmissionSvc.Confirm(ctx, id, submission.ConfirmSupporters{
		MemberIDs:    memberIDs,
		ScheduleDate: scheduleDate,
	})
	if err != nil && !errors.Is(err, submission.ErrScheduleFailed) {
		return errors.Wrap(err, "confirming supporters")
	}

	fmt.Fprintf(cli.out, "saved %d supporters for submission %s\n", len(sub.SuggestedSupporters), sub.ID)
	if err != nil {
		return errors.Wrap(err, "supporters saved, schedule not generated")
	}
	if scheduleDate != "" {
		fmt.Fprintf(cli.out, "schedule generation triggered for %s\n", scheduleDate)
	}
	return nil
}
