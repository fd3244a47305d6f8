package purchase

import (
	"database/sql/driver"
	"fmt"
)

// Status is closed: only the constants below can be stored or loaded.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusSubmitted  Status = "SUBMITTED"
	StatusInApproval Status = "IN_APPROVAL"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
)

// transitions is the whole lifecycle; anything not listed is refused.
var transitions = map[Status][]Status{
	StatusDraft:      {StatusSubmitted},
	StatusSubmitted:  {StatusInApproval},
	StatusInApproval: {StatusApproved, StatusRejected},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown purchase request status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusInApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) Terminal() bool { return s == StatusApproved || s == StatusRejected }

func (s Status) CanTransitionTo(next Status) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid purchase request status %q", string(s))
	}
	return string(s), nil
}

func (s *Status) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		return fmt.Errorf("purchase request status is NULL")
	default:
		return fmt.Errorf("cannot scan %T into purchase.Status", src)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
