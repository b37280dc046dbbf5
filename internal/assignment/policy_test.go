package assignment

import (
	"testing"

	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dispatched = models.AssignmentDispatched
	accepted   = models.AssignmentAccepted
	enRoute    = models.AssignmentEnRoute
	arrived    = models.AssignmentArrived
	completed  = models.AssignmentCompleted
)

func TestForwardPolicy(t *testing.T) {
	p := ForwardPolicy()

	assert.True(t, p.Allows(dispatched, accepted))
	assert.True(t, p.Allows(dispatched, completed))
	assert.True(t, p.Allows(accepted, arrived))
	assert.True(t, p.Allows(arrived, arrived))

	assert.False(t, p.Allows(arrived, accepted))
	assert.False(t, p.Allows(enRoute, dispatched))
	assert.False(t, p.Allows(completed, completed))
	assert.False(t, p.Allows(completed, dispatched))
	assert.False(t, p.Allows(dispatched, "teleported"))
}

func TestStrictPolicy(t *testing.T) {
	p := StrictPolicy()

	assert.True(t, p.Allows(dispatched, accepted))
	assert.True(t, p.Allows(accepted, enRoute))
	assert.True(t, p.Allows(enRoute, arrived))
	assert.True(t, p.Allows(arrived, completed))

	assert.False(t, p.Allows(dispatched, completed))
	assert.False(t, p.Allows(accepted, arrived))
}

func TestPermissivePolicy(t *testing.T) {
	p := PermissivePolicy()

	assert.True(t, p.Allows(arrived, dispatched))
	assert.True(t, p.Allows(dispatched, completed))
	assert.False(t, p.Allows(completed, arrived))
}

func TestPolicyByName(t *testing.T) {
	for name, want := range map[string]string{
		"":           PolicyForward,
		"forward":    PolicyForward,
		" Strict ":   PolicyStrict,
		"permissive": PolicyPermissive,
	} {
		p, err := PolicyByName(name)
		require.NoError(t, err)
		assert.Equal(t, want, p.Name())
	}

	_, err := PolicyByName("chaotic")
	assert.Error(t, err)
}

func TestNewPolicy_CustomTable(t *testing.T) {
	p := NewPolicy("custom", map[models.AssignmentStatus][]models.AssignmentStatus{
		completed: {dispatched},
	})

	assert.True(t, p.Allows(dispatched, completed))
	assert.False(t, p.Allows(dispatched, accepted))
	assert.Equal(t, "custom", p.Name())
}

func TestPolicies_CancelledAssignmentIsClosed(t *testing.T) {
	for _, p := range []Policy{ForwardPolicy(), StrictPolicy(), PermissivePolicy()} {
		for _, target := range models.AssignmentStatuses {
			assert.False(t, p.Allows(models.AssignmentCancelled, target), "%s: cancelled -> %s", p.Name(), target)
		}
		assert.False(t, p.Allows(dispatched, models.AssignmentCancelled), "%s: cancel is not a reportable step", p.Name())
	}
}
