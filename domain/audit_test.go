package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAuditLogEntry(t *testing.T) {
	entry := NewAuditLogEntry(AuditActionDelete, "Task", StringPtr("t1"), nil, nil)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, AuditActionDelete, entry.Action)
	assert.Equal(t, "t1", *entry.ResourceID)
	assert.Nil(t, entry.ChangedBy)
	assert.NotNil(t, entry.Changes)
	assert.Empty(t, entry.Changes)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestAuditPolicy(t *testing.T) {
	mutationsOnly := AuditPolicy{}
	everything := AuditPolicy{LogReads: true}

	for _, a := range []AuditAction{AuditActionCreate, AuditActionUpdate, AuditActionDelete} {
		assert.True(t, mutationsOnly.Allows(a), a)
		assert.True(t, everything.Allows(a), a)
		assert.True(t, a.IsMutation())
	}
	assert.False(t, mutationsOnly.Allows(AuditActionRead))
	assert.True(t, everything.Allows(AuditActionRead))
	assert.False(t, AuditActionRead.IsMutation())
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", *StringPtr("x"))
}
