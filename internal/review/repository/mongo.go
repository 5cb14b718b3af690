package repository

import (
	"context"
	"errors"
	"math"

	"github.com/alang8/Help-Restaurant-Review/internal/review"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores reviews in the "reviews" collection keyed by reviewId.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "reviewId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "nodeId", Value: 1}, {Key: "dateCreated", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return &MongoRepo{col: col}, nil
}

func (m *MongoRepo) Create(ctx context.Context, r *review.Review) error {
	if _, err := m.col.InsertOne(ctx, r); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*review.Review, error) {
	var r review.Review
	if err := m.col.FindOne(ctx, bson.M{"reviewId": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (m *MongoRepo) GetMany(ctx context.Context, ids []string) ([]*review.Review, error) {
	return m.find(ctx, bson.M{"reviewId": bson.M{"$in": ids}}, options.Find())
}

func (m *MongoRepo) ListByNode(ctx context.Context, nodeID string) ([]*review.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: 1}, {Key: "reviewId", Value: 1}})
	return m.find(ctx, bson.M{"nodeId": nodeID}, opts)
}

func (m *MongoRepo) Recent(ctx context.Context, nodeID string, limit int) ([]*review.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: -1}, {Key: "reviewId", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return m.find(ctx, bson.M{"nodeId": nodeID}, opts)
}

func (m *MongoRepo) Update(ctx context.Context, id string, u review.Update) (*review.Review, error) {
	set := bson.M{}
	if u.Author != nil {
		set["author"] = *u.Author
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.Rating != nil {
		set["rating"] = *u.Rating
	}
	if !u.DateModified.IsZero() {
		set["dateModified"] = u.DateModified
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r review.Review
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"reviewId": id}, bson.M{"$set": set}, opts).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (m *MongoRepo) AddReply(ctx context.Context, parentID, childID string) error {
	return m.updateOne(ctx, parentID, bson.M{"$addToSet": bson.M{"replies": childID}})
}

func (m *MongoRepo) RemoveReply(ctx context.Context, parentID, childID string) error {
	return m.updateOne(ctx, parentID, bson.M{"$pull": bson.M{"replies": childID}})
}

func (m *MongoRepo) Delete(ctx context.Context, ids []string) (int64, error) {
	return m.deleteMany(ctx, bson.M{"reviewId": bson.M{"$in": ids}})
}

func (m *MongoRepo) DeleteByNodeIDs(ctx context.Context, nodeIDs []string) (int64, error) {
	return m.deleteMany(ctx, bson.M{"nodeId": bson.M{"$in": nodeIDs}})
}

func (m *MongoRepo) DeleteAll(ctx context.Context) (int64, error) {
	return m.deleteMany(ctx, bson.M{})
}

func (m *MongoRepo) NodeIDs(ctx context.Context) ([]string, error) {
	vals, err := m.col.Distinct(ctx, "nodeId", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// RatingSummary aggregates a node's root reviews in the database: count,
// rounded average, whole-star histogram and root ids oldest first.
func (m *MongoRepo) RatingSummary(ctx context.Context, nodeID string) (*review.Rating, error) {
	star := bson.M{"$min": bson.A{review.MaxRating, bson.M{"$max": bson.A{review.MinRating, bson.M{"$floor": "$rating"}}}}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"nodeId": nodeID, "parentReviewId": nil}}},
		{{Key: "$sort", Value: bson.D{{Key: "dateCreated", Value: 1}, {Key: "reviewId", Value: 1}}}},
		{{Key: "$facet", Value: bson.M{
			"summary": bson.A{bson.M{"$group": bson.M{
				"_id":   nil,
				"count": bson.M{"$sum": 1},
				"sum":   bson.M{"$sum": "$rating"},
				"ids":   bson.M{"$push": "$reviewId"},
			}}},
			"stars": bson.A{bson.M{"$group": bson.M{"_id": star, "n": bson.M{"$sum": 1}}}},
		}}},
	}
	cur, err := m.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var res []struct {
		Summary []struct {
			Count int      `bson:"count"`
			Sum   float64  `bson:"sum"`
			IDs   []string `bson:"ids"`
		} `bson:"summary"`
		Stars []struct {
			Star float64 `bson:"_id"`
			N    int     `bson:"n"`
		} `bson:"stars"`
	}
	if err := cur.All(ctx, &res); err != nil {
		return nil, err
	}
	out := &review.Rating{NodeID: nodeID, RootIDs: []string{}}
	if len(res) == 0 || len(res[0].Summary) == 0 {
		return out, nil
	}
	sum := res[0].Summary[0]
	out.Count = sum.Count
	out.RootIDs = append(out.RootIDs, sum.IDs...)
	for _, s := range res[0].Stars {
		out.Histogram[int(s.Star)] += s.N
	}
	if out.Count > 0 {
		avg := math.Round(sum.Sum/float64(out.Count)*100) / 100
		out.Average = &avg
	}
	return out, nil
}

func (m *MongoRepo) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := m.col.UpdateOne(ctx, bson.M{"reviewId": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := m.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*review.Review, error) {
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*review.Review{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
