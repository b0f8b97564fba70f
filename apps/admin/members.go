package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/repostnet/core/member"
)

func (cli *commandLine) candidates(ctx context.Context, tags []string, minFollowers int) error {
	members, err := cli.deps.MemberSvc.LoadCandidates(ctx, tags, minFollowers)
	if err != nil {
		return errors.Wrap(err, "loading candidates")
	}
	return cli.printMembers(members)
}

func (cli *commandLine) search(ctx context.Context, prefix string) error {
	members, err := cli.deps.MemberSvc.SearchCandidates(ctx, prefix)
	if err != nil {
		return errors.Wrap(err, "searching candidates")
	}
	return cli.printMembers(members)
}

func (cli *commandLine) printMembers(members []member.Member) error {
	if len(members) == 0 {
		_, err := fmt.Fprintln(cli.out, "no members found")
		return err
	}
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFOLLOWERS\tTIER\tCREDITS\tTAGS")
	for _, m := range members {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n", m.ID, m.Name, m.Followers, m.Tier(), m.Credits, strings.Join(m.Tags, ","))
	}
	return w.Flush()
}
