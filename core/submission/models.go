package submission

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/member"
	"github.com/trezcool/repostnet/core/reach"
)

const DateLayout = "2006-01-02"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Submission is a track submitted to the network for promotion.
type Submission struct {
	ID                  string     `json:"id"`
	ArtistName          string     `json:"artist_name"`
	TrackURL            string     `json:"track_url"`
	Genres              []string   `json:"genres"`
	ExpectedReach       int        `json:"expected_reach"` // planned audience size
	Status              Status     `json:"status"`
	SuggestedSupporters []string   `json:"suggested_supporters"` // member IDs, in selection order
	ScheduledFor        *time.Time `json:"scheduled_for,omitempty"`
	CreatedAt           time.Time  `json:"created_at"` // UTC
	UpdatedAt           time.Time  `json:"updated_at"` // UTC
}

// Suggestion is the automatic supporter selection for a Submission.
type Suggestion struct {
	Submission Submission      `json:"submission"`
	Target     reach.Target    `json:"target"`
	Pool       []member.Member `json:"pool"`
	Selection  reach.Selection `json:"selection"`
}

// AdjustSelection asks to toggle one member in a selection held by the caller.
type AdjustSelection struct {
	Target   reach.Target `json:"target"`
	Selected []string     `json:"selected" validate:"omitempty,dive,uuid"`
	MemberID string       `json:"member_id" validate:"required,uuid"`
}

func (as *AdjustSelection) Validate(validate *validator.Validate) error {
	as.MemberID = core.CleanString(as.MemberID, true /* lower */)
	as.Selected = core.CleanStrings(as.Selected, true /* lower */)
	if err := validate.Struct(as); err != nil {
		return err
	}
	if !as.Target.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "target", Error: "invalid target band"})
	}
	return nil
}

// ConfirmSupporters contains what is needed to save the supporters of a Submission.
type ConfirmSupporters struct {
	MemberIDs    []string `json:"member_ids" validate:"dive,uuid"`
	ScheduleDate string   `json:"schedule_date" validate:"omitempty,datetime=2006-01-02"`
}

// Validate cleans the request and rejects an empty selection before anything else.
func (cs *ConfirmSupporters) Validate(validate *validator.Validate) error {
	cs.MemberIDs = core.CleanStrings(cs.MemberIDs, true /* lower */)
	cs.ScheduleDate = core.CleanString(cs.ScheduleDate)
	if len(cs.MemberIDs) == 0 {
		return emptySelectionError()
	}
	return validate.Struct(cs)
}

func (cs ConfirmSupporters) scheduleDate() (*time.Time, error) {
	if cs.ScheduleDate == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, cs.ScheduleDate)
	if err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: "schedule_date", Error: "must be a YYYY-MM-DD date"})
	}
	return &d, nil
}

func validIDs(ids []string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "member_ids", Error: "must only contain valid UUIDs"})
		}
	}
	return nil
}
