package repository

import (
	"context"
	"errors"

	"github.com/alang8/Help-Restaurant-Review/internal/link"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "linkId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "anchor1Id", Value: 1}}},
		{Keys: bson.D{{Key: "anchor2Id", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return &MongoRepo{col: col}, nil
}

func anchorFilter(anchorIDs []string) bson.M {
	in := bson.M{"$in": anchorIDs}
	return bson.M{"$or": bson.A{bson.M{"anchor1Id": in}, bson.M{"anchor2Id": in}}}
}

func (m *MongoRepo) Create(ctx context.Context, l *link.Link) error {
	if _, err := m.col.InsertOne(ctx, l); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*link.Link, error) {
	var l link.Link
	if err := m.col.FindOne(ctx, bson.M{"linkId": id}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (m *MongoRepo) GetMany(ctx context.Context, ids []string) ([]*link.Link, error) {
	return m.find(ctx, bson.M{"linkId": bson.M{"$in": ids}})
}

func (m *MongoRepo) ListByAnchors(ctx context.Context, anchorIDs []string) ([]*link.Link, error) {
	return m.find(ctx, anchorFilter(anchorIDs))
}

func (m *MongoRepo) Update(ctx context.Context, id string, u link.Update) (*link.Link, error) {
	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Explainer != nil {
		set["explainer"] = *u.Explainer
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var l link.Link
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"linkId": id}, bson.M{"$set": set}, opts).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"linkId": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) DeleteByAnchors(ctx context.Context, anchorIDs []string) (int64, error) {
	res, err := m.col.DeleteMany(ctx, anchorFilter(anchorIDs))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M) ([]*link.Link, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: 1}, {Key: "linkId", Value: 1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*link.Link{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
