package submission_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/member"
	"github.com/trezcool/repostnet/core/reach"
	"github.com/trezcool/repostnet/core/submission"
	inmemdb "github.com/trezcool/repostnet/storage/database/inmem"
	"github.com/trezcool/repostnet/testutil"
)

var errBackendDown = errors.New("backend down")

type scheduleCall struct {
	submissionID string
	date         time.Time
}

type schedulerMock struct {
	calls []scheduleCall
	err   error
}

func (s *schedulerMock) GenerateSchedule(ctx context.Context, submissionID string, date time.Time) error {
	s.calls = append(s.calls, scheduleCall{submissionID, date})
	return s.err
}

type fixture struct {
	svc       *submission.Service
	memRepo   member.Repository
	subRepo   submission.Repository
	scheduler *schedulerMock
	failSubs  func(inmemdb.FailFunc)
	failMems  func(inmemdb.FailFunc)
}

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	memRepo := inmemdb.NewMemberRepository(db)
	subRepo := inmemdb.NewSubmissionRepository(db)
	conf := core.DefaultSelectionConfig()
	sched := new(schedulerMock)

	return fixture{
		svc:       submission.NewService(subRepo, member.NewService(memRepo, conf), sched, conf),
		memRepo:   memRepo,
		subRepo:   subRepo,
		scheduler: sched,
		failSubs:  func(ff inmemdb.FailFunc) { subRepo.Fail = ff },
		failMems:  func(ff inmemdb.FailFunc) { memRepo.Fail = ff },
	}
}

func TestService_Suggest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a := testutil.CreateMember(t, f.memRepo, "Alpha", 80000, 3, []string{"house"})
	testutil.CreateMember(t, f.memRepo, "Bravo", 50000, 3, []string{"house"})
	c := testutil.CreateMember(t, f.memRepo, "Charlie", 20000, 3, []string{"house"})
	testutil.CreateMember(t, f.memRepo, "Delta", 500000, 3, []string{"trap"})
	sub := testutil.CreateSubmission(t, f.subRepo, "phoenix", 100000, "house")

	got, err := f.svc.Suggest(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, reach.Target{Reach: 100000, Min: 90000, Max: 110000}, got.Target)
	assert.Len(t, got.Pool, 3)
	assert.Equal(t, []string{a.ID, c.ID}, got.Selection.IDs())
	assert.Equal(t, 100000, got.Selection.CumulativeReach)
	assert.Equal(t, reach.BandInBand, got.Selection.BandStatus)
}

func TestService_Suggest_oversized(t *testing.T) {
	f := setup(t)
	big := testutil.CreateMember(t, f.memRepo, "Mega", 200000, 3, []string{"house"})
	sub := testutil.CreateSubmission(t, f.subRepo, "phoenix", 100000, "house")

	got, err := f.svc.Suggest(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{big.ID}, got.Selection.IDs())
	assert.Equal(t, reach.BandOver, got.Selection.BandStatus)
}

func TestService_Suggest_floorsTarget(t *testing.T) {
	f := setup(t)
	testutil.CreateMember(t, f.memRepo, "Small", 950, 3, nil)
	sub := testutil.CreateSubmission(t, f.subRepo, "tiny", 10)

	got, err := f.svc.Suggest(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, got.Target.Reach)
	assert.Equal(t, reach.BandInBand, got.Selection.BandStatus)
}

func TestService_Suggest_emptyPool(t *testing.T) {
	f := setup(t)
	sub := testutil.CreateSubmission(t, f.subRepo, "lonely", 100000, "house")

	got, err := f.svc.Suggest(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.True(t, got.Selection.Empty())

	// confirming what was suggested must be rejected locally
	_, err = f.svc.Confirm(context.Background(), sub.ID, submission.ConfirmSupporters{MemberIDs: got.Selection.IDs()})
	assert.True(t, errors.Is(err, submission.ErrEmptySelection))
}

func TestService_Suggest_errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Suggest(ctx, "f47ac10b-58cc-4372-a567-0e02b2c3d479")
	assert.Equal(t, submission.ErrNotFound, errors.Cause(err))

	sub := testutil.CreateSubmission(t, f.subRepo, "phoenix", 100000, "house")
	f.failMems(func(ctx context.Context, op string) error { return errBackendDown })
	_, err = f.svc.Suggest(ctx, sub.ID)
	assert.True(t, errors.Is(err, member.ErrLoadFailed))
}

func TestService_Adjust(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	target := reach.Target{Reach: 100000, Min: 90000, Max: 110000}

	a := testutil.CreateMember(t, f.memRepo, "Alpha", 80000, 3, nil)
	b := testutil.CreateMember(t, f.memRepo, "Bravo", 50000, 3, nil)
	c := testutil.CreateMember(t, f.memRepo, "Charlie", 20000, 3, nil)

	sel, err := f.svc.Adjust(ctx, submission.AdjustSelection{Target: target, Selected: []string{a.ID}, MemberID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID}, sel.IDs())
	assert.Equal(t, 100000, sel.CumulativeReach)
	assert.Equal(t, reach.BandInBand, sel.BandStatus)

	sel, err = f.svc.Adjust(ctx, submission.AdjustSelection{Target: target, Selected: sel.IDs(), MemberID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, sel.IDs())
	assert.Equal(t, reach.BandUnder, sel.BandStatus)

	sel, err = f.svc.Adjust(ctx, submission.AdjustSelection{Target: target, Selected: []string{c.ID}, MemberID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, 70000, sel.CumulativeReach)

	_, err = f.svc.Adjust(ctx, submission.AdjustSelection{Target: target, MemberID: "f47ac10b-58cc-4372-a567-0e02b2c3d479"})
	assert.Equal(t, member.ErrNotFound, errors.Cause(err))

	_, err = f.svc.Adjust(ctx, submission.AdjustSelection{Target: reach.Target{}, MemberID: a.ID})
	assert.True(t, core.IsValidationError(err))
}

func TestService_Confirm(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := testutil.CreateMember(t, f.memRepo, "Alpha", 80000, 3, nil)
	c := testutil.CreateMember(t, f.memRepo, "Charlie", 20000, 3, nil)
	sub := testutil.CreateSubmission(t, f.subRepo, "phoenix", 100000)

	got, err := f.svc.Confirm(ctx, sub.ID, submission.ConfirmSupporters{MemberIDs: []string{c.ID, a.ID, c.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID}, got.SuggestedSupporters)
	assert.Empty(t, f.scheduler.calls)
	assert.Nil(t, got.ScheduledFor)

	saved, err := f.svc.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID}, saved.SuggestedSupporters)

	// last write wins
	got, err = f.svc.Confirm(ctx, sub.ID, submission.ConfirmSupporters{MemberIDs: []string{a.ID}, ScheduleDate: "2026-11-02"})
	require.NoError(t, err)
	date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	require.NotNil(t, got.ScheduledFor)
	assert.Equal(t, date, *got.ScheduledFor)

	saved, _ = f.svc.GetByID(ctx, sub.ID)
	assert.Equal(t, []string{a.ID}, saved.SuggestedSupporters)
	require.NotNil(t, saved.ScheduledFor)
	assert.Equal(t, date, *saved.ScheduledFor)
	require.Len(t, f.scheduler.calls, 1)
	assert.Equal(t, sub.ID, f.scheduler.calls[0].submissionID)
	assert.Equal(t, date, f.scheduler.calls[0].date)
}

func TestService_Confirm_errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := testutil.CreateMember(t, f.memRepo, "Alpha", 80000, 3, nil)
	sub := testutil.CreateSubmission(t, f.subRepo, "phoenix", 100000)

	var repoCalls int
	f.failSubs(func(ctx context.Context, op string) error {
		repoCalls++
		return nil
	})

	_, err := f.svc.Confirm(ctx, sub.ID, submission.ConfirmSupporters{})
	assert.True(t, errors.Is(err, submission.ErrEmptySelection))
	assert.True(t, core.IsValidationError(err))
	_, err = f.svc.Confirm(ctx, sub.ID, submission.ConfirmSupporters{MemberIDs: []string{" ", ""}})
	assert.True(t, errors.Is(err, submission.ErrEmptySelection))
	_, err = f.svc.Confirm(ctx, sub.ID, submission.ConfirmSupporters{MemberIDs: []string{"lol"}})
	assert.True(t, core.IsValidationError(err))
	_, err = f.svc.Confirm(ctx, sub.ID, submission.ConfirmSupporters{MemberIDs: []string{a.ID}, ScheduleDate: "02/11/2026"})
	assert.True(t, core.IsValidationError(err))
	assert.Zero(t, repoCalls, "invalid requests must not reach the repository")

	_, err = f.svc.Confirm(ctx, "f47ac10b-58cc-4372-a567-0e02b2c3d479", submission.ConfirmSupporters{MemberIDs: []string{a.ID}})
	assert.Equal(t, submission.ErrNotFound, errors.Cause(err))

	f.failSubs(func(ctx context.Context, op string) error { return errBackendDown })
	ids := []string{a.ID}
	_, err = f.svc.Confirm(ctx, sub.ID, submission.ConfirmSupporters{MemberIDs: ids})
	assert.True(t, errors.Is(err, submission.ErrPersistFailed))
	assert.True(t, errors.Is(err, errBackendDown))
	assert.Equal(t, []string{a.ID}, ids, "the caller's selection is kept for a retry")

	// retry succeeds once the backend is back
	f.failSubs(nil)
	got, err := f.svc.Confirm(ctx, sub.ID, submission.ConfirmSupporters{MemberIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, ids, got.SuggestedSupporters)

	f.scheduler.err = errBackendDown
	got, err = f.svc.Confirm(ctx, sub.ID, submission.ConfirmSupporters{MemberIDs: ids, ScheduleDate: "2026-11-02"})
	assert.True(t, errors.Is(err, submission.ErrScheduleFailed))
	assert.Equal(t, ids, got.SuggestedSupporters, "supporters stay saved when the schedule trigger fails")
	assert.Nil(t, got.ScheduledFor)

	f.scheduler.err = nil
	f.failSubs(func(ctx context.Context, op string) error {
		if op == "UpdateScheduledFor" {
			return errBackendDown
		}
		return nil
	})
	got, err = f.svc.Confirm(ctx, sub.ID, submission.ConfirmSupporters{MemberIDs: ids, ScheduleDate: "2026-11-02"})
	assert.True(t, errors.Is(err, submission.ErrPersistFailed))
	assert.Equal(t, ids, got.SuggestedSupporters)
	assert.Nil(t, got.ScheduledFor)
}
