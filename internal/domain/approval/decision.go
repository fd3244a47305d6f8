package approval

import (
	"database/sql/driver"
	"fmt"
)

type Decision string

const (
	DecisionPending  Decision = "PENDING"
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

func ParseDecision(s string) (Decision, error) {
	d := Decision(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown approval decision %q", s)
	}
	return d, nil
}

func (d Decision) Valid() bool {
	switch d {
	case DecisionPending, DecisionApproved, DecisionRejected:
		return true
	}
	return false
}

// Final reports whether d is a recorded (non-pending) decision.
func (d Decision) Final() bool { return d == DecisionApproved || d == DecisionRejected }

func (d Decision) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid approval decision %q", string(d))
	}
	return string(d), nil
}

func (d *Decision) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		return fmt.Errorf("approval decision is NULL")
	default:
		return fmt.Errorf("cannot scan %T into approval.Decision", src)
	}
	dec, err := ParseDecision(raw)
	if err != nil {
		return err
	}
	*d = dec
	return nil
}
