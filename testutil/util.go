package testutil

import (
	"context"
	"testing"

	"github.com/trezcool/repostnet/core/member"
	"github.com/trezcool/repostnet/core/submission"
)

func CreateMember(
	t *testing.T,
	repo member.Repository,
	name string,
	followers, credits int,
	tags []string,
	status ...member.Status,
) member.Member {
	t.Helper()

	st := member.StatusActive
	if len(status) > 0 {
		st = status[0]
	}
	m, err := repo.CreateMember(context.Background(), member.Member{
		Name:      name,
		Followers: followers,
		Credits:   credits,
		Tags:      tags,
		Status:    st,
	})
	if err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	return m
}

func CreateSubmission(
	t *testing.T,
	repo submission.Repository,
	artist string,
	expectedReach int,
	genres ...string,
) submission.Submission {
	t.Helper()

	sub, err := repo.CreateSubmission(context.Background(), submission.Submission{
		ArtistName:    artist,
		TrackURL:      "https://soundcloud.com/" + artist + "/track",
		Genres:        genres,
		ExpectedReach: expectedReach,
		Status:        submission.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}
