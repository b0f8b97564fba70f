package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/repostnet/core/member"
	"github.com/trezcool/repostnet/core/submission"
)

type (
	DB struct {
		member     *memberTable
		submission *submissionTable
	}

	memberTable struct {
		sync.RWMutex
		table map[string]*member.Member
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]*submission.Submission
	}

	// FailFunc lets tests make a repository call fail; op is the repository method name.
	FailFunc func(ctx context.Context, op string) error
)

func Open() *DB {
	return &DB{
		member:     &memberTable{table: make(map[string]*member.Member)},
		submission: &submissionTable{table: make(map[string]*submission.Submission)},
	}
}

func (ff FailFunc) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ff != nil {
		return ff(ctx, op)
	}
	return nil
}
