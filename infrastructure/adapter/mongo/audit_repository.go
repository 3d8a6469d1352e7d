package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const AuditCollection = "audit_logs"

type auditDocument struct {
	ID           string               `bson:"_id"`
	Action       string               `bson:"action"`
	ResourceType string               `bson:"resource_type"`
	ResourceID   *string              `bson:"resource_id"`
	ChangedBy    *string              `bson:"changed_by"`
	Changes      []domain.AuditChange `bson:"changes"`
	Remarks      string               `bson:"remarks,omitempty"`
	Metadata     map[string]any       `bson:"metadata,omitempty"`
	IP           string               `bson:"ip,omitempty"`
	UserAgent    string               `bson:"user_agent,omitempty"`
	CreatedAt    time.Time            `bson:"created_at"`
}

// AuditRepository keeps audit entries as documents. It only ever inserts.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	// Nested documents decode as maps so metadata snapshots render as JSON objects.
	collOpts := options.Collection().SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	return &AuditRepository{coll: db.Collection(AuditCollection, collOpts)}
}

var _ outbound.AuditRepository = (*AuditRepository)(nil)

// EnsureIndexes creates the lookup indexes used by the query surface.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "resource_type", Value: 1}, {Key: "resource_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "changed_by", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return nil
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	changes := entry.Changes
	if changes == nil {
		changes = []domain.AuditChange{}
	}
	doc := auditDocument{
		ID:           entry.ID,
		Action:       string(entry.Action),
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		ChangedBy:    entry.ChangedBy,
		Changes:      changes,
		Remarks:      entry.Remarks,
		Metadata:     entry.Metadata,
		IP:           entry.IP,
		UserAgent:    entry.UserAgent,
		CreatedAt:    entry.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) QueryByResource(ctx context.Context, resourceType string, resourceID *string) ([]*domain.AuditLogEntry, error) {
	filter := bson.M{"resource_type": resourceType, "resource_id": nil}
	if resourceID != nil {
		filter["resource_id"] = *resourceID
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *AuditRepository) Query(ctx context.Context, f domain.AuditFilter) ([]*domain.AuditLogEntry, error) {
	filter := bson.M{}
	if f.ResourceType != "" {
		filter["resource_type"] = f.ResourceType
	}
	if f.ResourceID != "" {
		filter["resource_id"] = f.ResourceID
	}
	if f.ChangedBy != "" {
		filter["changed_by"] = f.ChangedBy
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	return r.find(ctx, filter, opts)
}

func (r *AuditRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.AuditLogEntry, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*domain.AuditLogEntry{}
	for cursor.Next(ctx) {
		var doc auditDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode audit entry: %w", err)
		}
		entries = append(entries, doc.toEntry())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}

func (d auditDocument) toEntry() *domain.AuditLogEntry {
	changes := d.Changes
	if changes == nil {
		changes = []domain.AuditChange{}
	}
	return &domain.AuditLogEntry{
		ID:           d.ID,
		Action:       domain.AuditAction(d.Action),
		ResourceType: d.ResourceType,
		ResourceID:   d.ResourceID,
		ChangedBy:    d.ChangedBy,
		Changes:      changes,
		Remarks:      d.Remarks,
		Metadata:     d.Metadata,
		IP:           d.IP,
		UserAgent:    d.UserAgent,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// Connect opens a client and verifies the deployment is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}
