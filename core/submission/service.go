package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/member"
	"github.com/trezcool/repostnet/core/reach"
)

var (
	// errors
	ErrNotFound       = errors.New("submission not found")
	ErrEmptySelection = errors.New("select at least one supporter")
	ErrPersistFailed  = errors.New("saving supporters failed")
	ErrScheduleFailed = errors.New("generating schedule failed")
)

// StepError is returned when a backend call of a supporters workflow fails.
// errors.Is(err, Kind) holds for it.
type StepError struct {
	Kind error
	Op   string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error        { return e.Err }
func (e *StepError) Is(target error) bool { return target == e.Kind }

func emptySelectionError() error {
	return core.NewValidationError(ErrEmptySelection, core.FieldError{Field: "member_ids", Error: ErrEmptySelection.Error()})
}

type (
	Repository interface {
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmission(ctx context.Context, id string) (Submission, error)
		// UpdateSuggestedSupporters overwrites the suggested supporters of a submission (last write wins).
		UpdateSuggestedSupporters(ctx context.Context, id string, memberIDs []string) (Submission, error)
		// UpdateScheduledFor records the date a repost schedule was generated for.
		UpdateScheduledFor(ctx context.Context, id string, date time.Time) (Submission, error)
	}

	// Scheduler triggers the generation of a repost schedule for a submission.
	Scheduler interface {
		GenerateSchedule(ctx context.Context, submissionID string, date time.Time) error
	}

	// CandidateLoader is the subset of member.Service used to pick supporters.
	CandidateLoader interface {
		LoadCandidates(ctx context.Context, tags []string, minFollowers int) ([]member.Member, error)
		GetByIDs(ctx context.Context, ids []string) ([]member.Member, error)
	}

	Service struct {
		repo      Repository
		members   CandidateLoader
		scheduler Scheduler
		conf      core.SelectionConfig
	}
)

func NewService(repo Repository, members CandidateLoader, scheduler Scheduler, conf core.SelectionConfig) *Service {
	return &Service{
		repo:      repo,
		members:   members,
		scheduler: scheduler,
		conf:      conf,
	}
}

func (svc *Service) Create(ctx context.Context, sub Submission) (Submission, error) {
	now := time.Now().UTC()
	sub.Genres = core.CleanStrings(sub.Genres, true /* lower */)
	if sub.Status == "" {
		sub.Status = StatusPending
	}
	sub.CreatedAt = now
	sub.UpdatedAt = now
	return svc.repo.CreateSubmission(ctx, sub)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmission(ctx, core.CleanString(id, true /* lower */))
}

// Target returns the reach target of sub.
func (svc *Service) Target(sub Submission) reach.Target {
	return reach.NewTarget(sub.ExpectedReach, svc.conf.Tolerance, svc.conf.MinTargetReach)
}

// Suggest loads the candidate pool of a submission and picks its supporters automatically.
func (svc *Service) Suggest(ctx context.Context, id string) (Suggestion, error) {
	sub, err := svc.GetByID(ctx, id)
	if err != nil {
		return Suggestion{}, errors.Wrap(err, "getting submission")
	}

	target := svc.Target(sub)
	pool, err := svc.members.LoadCandidates(ctx, sub.Genres, svc.conf.MinFollowers)
	if err != nil {
		return Suggestion{}, errors.Wrap(err, "loading candidates")
	}

	maxCount := svc.conf.MaxSupporters
	if maxCount <= 0 {
		maxCount = core.DefaultSelectionConfig().MaxSupporters
	}
	return Suggestion{
		Submission: sub,
		Target:     target,
		Pool:       pool,
		Selection:  reach.SelectForTarget(pool, target, maxCount),
	}, nil
}

// Adjust toggles a member in the selection described by adj and returns the recomputed selection.
func (svc *Service) Adjust(ctx context.Context, adj AdjustSelection) (reach.Selection, error) {
	if !adj.Target.Valid() {
		return reach.Selection{}, core.NewValidationError(nil, core.FieldError{Field: "target", Error: "invalid target band"})
	}
	ids := make([]string, 0, len(adj.Selected)+1)
	ids = append(ids, adj.Selected...)
	ids = append(ids, adj.MemberID)

	members, err := svc.members.GetByIDs(ctx, ids)
	if err != nil {
		return reach.Selection{}, errors.Wrap(err, "getting selected members")
	}
	sel := reach.NewSelection(adj.Target, members[:len(members)-1]...)
	return reach.Toggle(sel, members[len(members)-1]), nil
}

// Confirm saves the supporters of a submission and, if a date is given, triggers its schedule.
// An empty selection is rejected before any backend call.
func (svc *Service) Confirm(ctx context.Context, id string, cs ConfirmSupporters) (Submission, error) {
	ids := core.CleanStrings(cs.MemberIDs, true /* lower */)
	if len(ids) == 0 {
		return Submission{}, emptySelectionError()
	}
	if err := validIDs(ids); err != nil {
		return Submission{}, err
	}
	cs.MemberIDs = ids
	date, err := cs.scheduleDate()
	if err != nil {
		return Submission{}, err
	}

	id = core.CleanString(id, true /* lower */)
	sub, err := svc.repo.UpdateSuggestedSupporters(ctx, id, ids)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Submission{}, err
		}
		return Submission{}, &StepError{Kind: ErrPersistFailed, Op: "updating suggested supporters", Err: err}
	}

	if date != nil && svc.scheduler != nil {
		if err = svc.scheduler.GenerateSchedule(ctx, sub.ID, *date); err != nil {
			return sub, &StepError{Kind: ErrScheduleFailed, Op: "generating schedule", Err: err}
		}
		scheduled, err := svc.repo.UpdateScheduledFor(ctx, sub.ID, *date)
		if err != nil {
			return sub, &StepError{Kind: ErrPersistFailed, Op: "recording schedule date", Err: err}
		}
		sub = scheduled
	}
	return sub, nil
}
