package users

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines persistence operations for reviewers
type UserRepository interface {
	UpsertBySub(ctx context.Context, u *models.Reviewer) (*models.Reviewer, error)
	// GetBySub returns nil, nil when no reviewer has the subject.
	GetBySub(ctx context.Context, sub string) (*models.Reviewer, error)
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
// and makes sure subjects are unique.
func NewMongoUserRepository(ctx context.Context, col *mongo.Collection) (*MongoUserRepository, error) {
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sub", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &MongoUserRepository{col: col}, nil
}

func (r *MongoUserRepository) UpsertBySub(ctx context.Context, u *models.Reviewer) (*models.Reviewer, error) {
	now := time.Now().UTC()
	filter := bson.M{"sub": u.Sub}
	update := bson.M{
		"$set": bson.M{
			"email":       u.Email,
			"name":        u.Name,
			"displayName": u.DisplayName,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.Reviewer
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoUserRepository) GetBySub(ctx context.Context, sub string) (*models.Reviewer, error) {
	var u models.Reviewer
	if err := r.col.FindOne(ctx, bson.M{"sub": sub}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// MemoryUserRepository keeps reviewers in process memory.
type MemoryUserRepository struct {
	mu    sync.Mutex
	bySub map[string]models.Reviewer
	now   func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{bySub: map[string]models.Reviewer{}, now: time.Now}
}

func (m *MemoryUserRepository) UpsertBySub(_ context.Context, u *models.Reviewer) (*models.Reviewer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	cur, ok := m.bySub[u.Sub]
	if !ok {
		cur = models.Reviewer{ID: u.Sub, Sub: u.Sub, CreatedAt: now}
	}
	cur.Email, cur.Name, cur.DisplayName = u.Email, u.Name, u.DisplayName
	cur.UpdatedAt = now
	m.bySub[u.Sub] = cur
	out := cur
	return &out, nil
}

func (m *MemoryUserRepository) GetBySub(_ context.Context, sub string) (*models.Reviewer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.bySub[sub]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
