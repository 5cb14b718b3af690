package repository

import (
	"context"
	"errors"

	"github.com/alang8/Help-Restaurant-Review/internal/anchor"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "anchorId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "nodeId", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return &MongoRepo{col: col}, nil
}

func (m *MongoRepo) Create(ctx context.Context, a *anchor.Anchor) error {
	if _, err := m.col.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*anchor.Anchor, error) {
	var a anchor.Anchor
	if err := m.col.FindOne(ctx, bson.M{"anchorId": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (m *MongoRepo) GetMany(ctx context.Context, ids []string) ([]*anchor.Anchor, error) {
	return m.find(ctx, bson.M{"anchorId": bson.M{"$in": ids}})
}

func (m *MongoRepo) ListByNode(ctx context.Context, nodeID string) ([]*anchor.Anchor, error) {
	return m.find(ctx, bson.M{"nodeId": nodeID})
}

func (m *MongoRepo) UpdateExtent(ctx context.Context, id string, e *anchor.Extent) (*anchor.Anchor, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a anchor.Anchor
	err := m.col.FindOneAndUpdate(ctx, bson.M{"anchorId": id}, bson.M{"$set": bson.M{"extent": e}}, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (m *MongoRepo) Delete(ctx context.Context, ids []string) (int64, error) {
	res, err := m.col.DeleteMany(ctx, bson.M{"anchorId": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoRepo) IDsByNodes(ctx context.Context, nodeIDs []string) ([]string, error) {
	list, err := m.find(ctx, bson.M{"nodeId": bson.M{"$in": nodeIDs}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.AnchorID)
	}
	return out, nil
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M) ([]*anchor.Anchor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: 1}, {Key: "anchorId", Value: 1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*anchor.Anchor{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
