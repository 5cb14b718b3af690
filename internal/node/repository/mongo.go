package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/alang8/Help-Restaurant-Review/internal/node"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on a MongoDB collection. Documents are
// keyed by the string "nodeId" field rather than _id.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "nodeId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "filePath.path", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "dateCreated", Value: -1}}},
	})
	if err != nil {
		return nil, err
	}
	return &MongoRepo{col: col}, nil
}

func (m *MongoRepo) Create(ctx context.Context, n *node.Node) error {
	if _, err := m.col.InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*node.Node, error) {
	var n node.Node
	if err := m.col.FindOne(ctx, bson.M{"nodeId": id}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (m *MongoRepo) GetMany(ctx context.Context, ids []string) ([]*node.Node, error) {
	return m.find(ctx, bson.M{"nodeId": bson.M{"$in": ids}})
}

func (m *MongoRepo) List(ctx context.Context) ([]*node.Node, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoRepo) ListByType(ctx context.Context, t node.Type) ([]*node.Node, error) {
	return m.find(ctx, bson.M{"type": t})
}

func (m *MongoRepo) Descendants(ctx context.Context, id string) ([]*node.Node, error) {
	return m.find(ctx, bson.M{"filePath.path": id, "nodeId": bson.M{"$ne": id}})
}

func (m *MongoRepo) Update(ctx context.Context, id string, u node.Update) (*node.Node, error) {
	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Slug != nil {
		set["slug"] = *u.Slug
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.Restaurant != nil {
		set["restaurant"] = u.Restaurant
	}
	if u.ImageDim != nil {
		set["imageDim"] = u.ImageDim
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n node.Node
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"nodeId": id}, bson.M{"$set": set}, opts).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (m *MongoRepo) SetPath(ctx context.Context, id string, path []string) error {
	return m.updateOne(ctx, id, bson.M{"$set": bson.M{"filePath.path": path}})
}

func (m *MongoRepo) AddChild(ctx context.Context, parentID, childID string) error {
	return m.updateOne(ctx, parentID, bson.M{"$addToSet": bson.M{"filePath.children": childID}})
}

func (m *MongoRepo) RemoveChild(ctx context.Context, parentID, childID string) error {
	return m.updateOne(ctx, parentID, bson.M{"$pull": bson.M{"filePath.children": childID}})
}

func (m *MongoRepo) SetRatingSummary(ctx context.Context, id string, s node.RatingSummary) error {
	rootIDs := s.RootIDs
	if rootIDs == nil {
		rootIDs = []string{}
	}
	res, err := m.col.UpdateOne(ctx,
		bson.M{"nodeId": id, "restaurant": bson.M{"$exists": true}},
		bson.M{"$set": bson.M{"restaurant.rating": s.Average, "restaurant.reviews": rootIDs}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, ids []string) (int64, error) {
	res, err := m.col.DeleteMany(ctx, bson.M{"nodeId": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoRepo) Search(ctx context.Context, query string, t node.Type) ([]*node.Node, error) {
	filter := bson.M{}
	if t != "" {
		filter["type"] = t
	}
	if q := strings.TrimSpace(query); q != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"content": re},
			bson.M{"restaurant.description": re},
			bson.M{"restaurant.location": re},
		}
	}
	return m.find(ctx, filter)
}

func (m *MongoRepo) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := m.col.UpdateOne(ctx, bson.M{"nodeId": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M) ([]*node.Node, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: -1}, {Key: "nodeId", Value: 1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*node.Node{}
	for cur.Next(ctx) {
		var n node.Node
		if err := cur.Decode(&n); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, cur.Err()
}
