package assignment

import (
	"fmt"
	"strings"

	"github.com/shenikar/emergency_dispatch/internal/models"
)

// Policy is an allowed-predecessor table: for every target status it lists the
// statuses an assignment may currently be in. Staying in the same non-terminal
// status is always allowed and only refreshes the location.
type Policy struct {
	name  string
	table map[models.AssignmentStatus][]models.AssignmentStatus
}

const (
	PolicyForward    = "forward"
	PolicyStrict     = "strict"
	PolicyPermissive = "permissive"
)

// NewPolicy builds a policy from an explicit table.
func NewPolicy(name string, table map[models.AssignmentStatus][]models.AssignmentStatus) Policy {
	return Policy{name: name, table: table}
}

// ForwardPolicy allows any move to a later status, skipping steps included.
func ForwardPolicy() Policy {
	table := make(map[models.AssignmentStatus][]models.AssignmentStatus)
	for i, target := range models.AssignmentStatuses {
		table[target] = append([]models.AssignmentStatus(nil), models.AssignmentStatuses[:i]...)
	}
	return NewPolicy(PolicyForward, table)
}

// StrictPolicy allows only the immediate successor.
func StrictPolicy() Policy {
	table := make(map[models.AssignmentStatus][]models.AssignmentStatus)
	for i := 1; i < len(models.AssignmentStatuses); i++ {
		table[models.AssignmentStatuses[i]] = []models.AssignmentStatus{models.AssignmentStatuses[i-1]}
	}
	return NewPolicy(PolicyStrict, table)
}

// PermissivePolicy allows any status from any non-terminal status.
func PermissivePolicy() Policy {
	open := make([]models.AssignmentStatus, 0, len(models.AssignmentStatuses))
	for _, s := range models.AssignmentStatuses {
		if !s.Terminal() {
			open = append(open, s)
		}
	}
	table := make(map[models.AssignmentStatus][]models.AssignmentStatus)
	for _, target := range models.AssignmentStatuses {
		table[target] = open
	}
	return NewPolicy(PolicyPermissive, table)
}

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyForward:
		return ForwardPolicy(), nil
	case PolicyStrict:
		return StrictPolicy(), nil
	case PolicyPermissive:
		return PermissivePolicy(), nil
	}
	return Policy{}, fmt.Errorf("unknown transition policy %q", name)
}

func (p Policy) Name() string {
	return p.name
}

// Allows reports whether an assignment in from may move to to.
func (p Policy) Allows(from, to models.AssignmentStatus) bool {
	if !to.Valid() || from.Terminal() {
		return false
	}
	if from == to {
		return true
	}
	for _, pred := range p.table[to] {
		if pred == from {
			return true
		}
	}
	return false
}
