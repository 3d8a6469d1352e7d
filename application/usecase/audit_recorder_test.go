package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fixora/taskhub/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditRecorder_Record(t *testing.T) {
	t.Run("stores entry with actor and client", func(t *testing.T) {
		repo := &fakeAuditRepo{}
		metrics := newFakeMetrics()
		recorder := NewAuditRecorder(repo, domain.AuditPolicy{}, metrics, nil)

		entry, ok := recorder.Record(actorCtx("emp-1", "LPI"), RecordRequest{
			Action:       domain.AuditActionUpdate,
			ResourceType: "Task",
			ResourceID:   domain.StringPtr("t1"),
			Changes:      []domain.AuditChange{{Field: "status", OldValue: "In Progress", NewValue: "Completed"}},
			Remarks:      "status changed",
		})

		require.True(t, ok)
		require.Len(t, repo.entries, 1)
		assert.Same(t, entry, repo.entries[0])
		assert.Equal(t, "emp-1", *entry.ChangedBy)
		assert.Equal(t, "10.0.0.7", entry.IP)
		assert.Equal(t, "go-test", entry.UserAgent)
		assert.Equal(t, "status changed", entry.Remarks)
		assert.Equal(t, 1, metrics.recorded)
	})

	t.Run("missing action or resource type is skipped silently", func(t *testing.T) {
		repo := &fakeAuditRepo{}
		metrics := newFakeMetrics()
		log := &mockAuditLogger{}
		log.On("Debug", mock.Anything).Return()
		recorder := NewAuditRecorder(repo, domain.AuditPolicy{LogReads: true}, metrics, log)

		_, ok1 := recorder.Record(context.Background(), RecordRequest{ResourceType: "Task"})
		_, ok2 := recorder.Record(context.Background(), RecordRequest{Action: domain.AuditActionCreate})

		assert.False(t, ok1)
		assert.False(t, ok2)
		assert.Empty(t, repo.entries)
		assert.Equal(t, 2, metrics.skipped[SkipMissingFields])
		log.AssertNumberOfCalls(t, "Debug", 2)
	})

	t.Run("reads follow policy", func(t *testing.T) {
		mutationsOnly := &fakeAuditRepo{}
		everything := &fakeAuditRepo{}

		_, ok := newRecorder(mutationsOnly, false).RecordRead(context.Background(), "Task", "t1")
		assert.False(t, ok)
		assert.Empty(t, mutationsOnly.entries)

		entry, ok := newRecorder(everything, true).RecordRead(context.Background(), "Task", "t1")
		require.True(t, ok)
		assert.Equal(t, domain.AuditActionRead, entry.Action)
		assert.Nil(t, entry.ChangedBy)
		assert.Len(t, everything.entries, 1)
	})

	t.Run("store failure is swallowed and logged", func(t *testing.T) {
		storeErr := errors.New("db down")
		repo := &fakeAuditRepo{failErr: storeErr}
		metrics := newFakeMetrics()
		log := &mockAuditLogger{}
		log.On("Error", "Failed to write audit entry", storeErr).Return()
		recorder := NewAuditRecorder(repo, domain.AuditPolicy{}, metrics, log)

		entry, ok := recorder.Record(context.Background(), RecordRequest{Action: domain.AuditActionDelete, ResourceType: "Task"})

		assert.False(t, ok)
		assert.Nil(t, entry)
		assert.Equal(t, 1, metrics.failed)
		log.AssertExpectations(t)
	})
}

func TestAuditRecorder_RecordChange(t *testing.T) {
	t.Run("diff then extra changes", func(t *testing.T) {
		repo := &fakeAuditRepo{}
		recorder := newRecorder(repo, false)

		before := map[string]any{"status": "In Progress", "title": "A"}
		entry, ok := recorder.RecordChange(context.Background(), ChangeRecord{
			Action:       domain.AuditActionUpdate,
			ResourceType: "Task",
			ResourceID:   domain.StringPtr("t1"),
			Before:       before,
			Updates:      domain.Updates{{Name: "status", Value: "Completed"}, {Name: "title", Value: "A"}},
			Extra:        []domain.AuditChange{domain.RemarkChange("looks good")},
		})

		require.True(t, ok)
		require.Len(t, entry.Changes, 2)
		assert.Equal(t, "status", entry.Changes[0].Field)
		assert.Equal(t, "remarks", entry.Changes[1].Field)
		assert.Equal(t, "In Progress", before["status"])
	})

	t.Run("update that changed nothing is skipped", func(t *testing.T) {
		repo := &fakeAuditRepo{}
		metrics := newFakeMetrics()
		log := &mockAuditLogger{}
		log.On("Debug", "Audit entry skipped: update changed nothing").Return()
		recorder := NewAuditRecorder(repo, domain.AuditPolicy{}, metrics, log)

		entry, ok := recorder.RecordChange(context.Background(), ChangeRecord{
			Action:       domain.AuditActionUpdate,
			ResourceType: "Task",
			ResourceID:   domain.StringPtr("t1"),
			Before:       map[string]any{"status": "In Progress"},
			Updates:      domain.Updates{{Name: "status", Value: "In Progress"}},
		})

		assert.False(t, ok)
		assert.Nil(t, entry)
		assert.Empty(t, repo.entries)
		assert.Equal(t, 1, metrics.skipped[SkipNoChanges])
		assert.Zero(t, metrics.recorded)
		log.AssertExpectations(t)
	})
}

func TestAuditRecorder_RecordCreateAndDelete(t *testing.T) {
	repo := &fakeAuditRepo{}
	recorder := newRecorder(repo, false)
	doc := map[string]any{"title": "T"}

	created, ok := recorder.RecordCreate(context.Background(), "Task", "t1", "T", doc)
	require.True(t, ok)
	require.Len(t, created.Changes, 1)
	assert.Equal(t, domain.AuditChange{Field: "task", OldValue: nil, NewValue: "Task created"}, created.Changes[0])
	assert.Equal(t, `Task "T" created`, created.Remarks)
	assert.Equal(t, "T", created.Metadata[domain.MetadataCreatedDocument].(map[string]any)["title"])

	deleted, ok := recorder.RecordDelete(context.Background(), "Task", "t1", "T", doc)
	require.True(t, ok)
	assert.Empty(t, deleted.Changes)
	assert.NotNil(t, deleted.Changes)
	assert.Equal(t, "T", deleted.Metadata[domain.MetadataDeletedDocument].(map[string]any)["title"])
}
