package member

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/repostnet/core"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Tier is a coarse bucket of a member's follower count.
type Tier string

const (
	Tier1 Tier = "T1" // < 1k
	Tier2 Tier = "T2" // < 10k
	Tier3 Tier = "T3" // < 100k
	Tier4 Tier = "T4"
)

var tierFloors = []struct {
	floor int
	tier  Tier
}{
	{100000, Tier4},
	{10000, Tier3},
	{1000, Tier2},
}

func TierFor(followers int) Tier {
	for _, tf := range tierFloors {
		if followers >= tf.floor {
			return tf.tier
		}
	}
	return Tier1
}

// Member is a network member who may be picked as a supporter of a submission.
// Members are read-only snapshots as far as the selection is concerned.
type Member struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Followers     int       `json:"followers"` // reach
	Credits       int       `json:"credits"`
	Tags          []string  `json:"tags"` // genres & groups, lower-cased
	Status        Status    `json:"status"`
	SoundCloudURL string    `json:"soundcloud_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (m Member) Tier() Tier { return TierFor(m.Followers) }

// Eligible reports whether m may currently be picked as a supporter.
func (m Member) Eligible() bool {
	return m.Status == StatusActive && m.Credits > 0
}

// HasAnyTag reports whether m carries at least one of tags.
func (m Member) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range m.Tags {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}

// Validate checks a decoded member record before it is handed to the selection.
func (m Member) Validate() error {
	var flds []core.FieldError
	if _, err := uuid.Parse(m.ID); err != nil {
		flds = append(flds, core.FieldError{Field: "id", Error: "must be a valid UUID"})
	}
	if strings.TrimSpace(m.Name) == "" {
		flds = append(flds, core.FieldError{Field: "name", Error: "this field is required"})
	}
	if m.Followers < 0 {
		flds = append(flds, core.FieldError{Field: "followers", Error: "must not be negative"})
	}
	if m.Credits < 0 {
		flds = append(flds, core.FieldError{Field: "credits", Error: "must not be negative"})
	}
	if !m.Status.Valid() {
		flds = append(flds, core.FieldError{Field: "status", Error: "unknown status"})
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (m Member) MarshalJSON() ([]byte, error) {
	type alias Member
	return json.Marshal(struct {
		alias
		Tier Tier `json:"tier"`
	}{alias(m), m.Tier()})
}

// EligibleFilter narrows the eligible members (active, credits > 0).
type EligibleFilter struct {
	Tags         []string // overlap; ignored if empty
	MinFollowers int
	Limit        int // 0: no limit
}
