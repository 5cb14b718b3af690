package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/ids"
	"github.com/alang8/Help-Restaurant-Review/internal/node"
	noderepo "github.com/alang8/Help-Restaurant-Review/internal/node/repository"
	"github.com/alang8/Help-Restaurant-Review/internal/render"
	"github.com/alang8/Help-Restaurant-Review/internal/review"
	"github.com/alang8/Help-Restaurant-Review/internal/review/repository"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound       = repository.ErrNotFound
	ErrDuplicate      = repository.ErrDuplicate
	ErrInvalid        = errors.New("not a valid review")
	ErrParentNotFound = errors.New("parent review does not exist")
	ErrNodeNotFound   = errors.New("node does not exist")
)

// Nodes is the part of the node service reviews depend on.
type Nodes interface {
	Get(ctx context.Context, id string) (*node.Node, error)
	RecordRating(ctx context.Context, nodeID string, average *float64, rootIDs []string) error
}

// Cache stores rendered threads and rating summaries per node. Entries are
// scoped to a generation that Invalidate advances.
type Cache interface {
	Generation(ctx context.Context, nodeID string) (int64, error)
	GetThread(ctx context.Context, nodeID string, gen int64) ([]*review.ThreadEntry, bool, error)
	SetThread(ctx context.Context, nodeID string, gen int64, thread []*review.ThreadEntry) error
	GetRating(ctx context.Context, nodeID string, gen int64) (*review.Rating, bool, error)
	SetRating(ctx context.Context, nodeID string, gen int64, rating *review.Rating) error
	Invalidate(ctx context.Context, nodeIDs ...string) error
}

// Service defines the review operations used by handlers, jobs and the CLI.
type Service interface {
	Create(ctx context.Context, r *review.Review) (*review.Review, error)
	Get(ctx context.Context, id string) (*review.Review, error)
	GetByNode(ctx context.Context, nodeID string) ([]*review.Review, error)
	Recent(ctx context.Context, nodeID string, limit int) ([]*review.Review, error)
	Update(ctx context.Context, id string, props []review.Property) (*review.Review, error)
	// Delete removes the review and all of its replies and returns their ids.
	Delete(ctx context.Context, id string) ([]string, error)
	DeleteAll(ctx context.Context) (int64, error)
	DeleteByNodeIDs(ctx context.Context, nodeIDs []string) error
	Thread(ctx context.Context, nodeID string) ([]*review.ThreadEntry, error)
	Rating(ctx context.Context, nodeID string) (*review.Rating, error)
	// SyncRating recomputes a node's rating from the store and records it on
	// the node.
	SyncRating(ctx context.Context, nodeID string) (*review.Rating, error)
	ReviewedNodeIDs(ctx context.Context) ([]string, error)
}

type Option func(*service)

// WithNodes enables node existence checks and rating write-back.
func WithNodes(n Nodes) Option {
	return func(s *service) { s.nodes = n }
}

func WithCache(c Cache) Option {
	return func(s *service) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func New(repo repository.Repository, opts ...Option) Service {
	s := &service{repo: repo, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(opts ...Option) Service {
	return New(repository.NewMemoryRepo(), opts...)
}

// NewMongoService returns a Service backed by a MongoDB collection.
func NewMongoService(ctx context.Context, col *mongo.Collection, opts ...Option) (Service, error) {
	repo, err := repository.NewMongoRepo(ctx, col)
	if err != nil {
		return nil, err
	}
	return New(repo, opts...), nil
}

type service struct {
	repo  repository.Repository
	nodes Nodes
	cache Cache
	now   func() time.Time
}

func (s *service) Create(ctx context.Context, in *review.Review) (*review.Review, error) {
	if in == nil {
		return nil, ErrInvalid
	}
	r := *in
	if r.NodeID == "" {
		return nil, fmt.Errorf("%w: nodeId is required", ErrInvalid)
	}
	if err := checkRating(r.Rating); err != nil {
		return nil, err
	}
	if r.ReviewID == "" {
		r.ReviewID = ids.New("review")
	} else if _, err := s.repo.Get(ctx, r.ReviewID); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	r.Author = render.PlainText(r.Author)

	if s.nodes != nil {
		if _, err := s.nodes.Get(ctx, r.NodeID); err != nil {
			if errors.Is(err, noderepo.ErrNotFound) {
				return nil, ErrNodeNotFound
			}
			return nil, err
		}
	}
	if r.ParentReviewID != nil && *r.ParentReviewID == "" {
		r.ParentReviewID = nil
	}
	if r.ParentReviewID != nil {
		parent, err := s.repo.Get(ctx, *r.ParentReviewID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.NodeID != r.NodeID {
			return nil, fmt.Errorf("%w: reply must be on the same node as its parent", ErrInvalid)
		}
	}

	now := s.now().UTC()
	r.Replies = []string{}
	r.DateCreated, r.DateModified = now, now
	if err := s.repo.Create(ctx, &r); err != nil {
		return nil, err
	}
	// the parent link is a second write and is not atomic with the insert
	if r.ParentReviewID != nil {
		if err := s.repo.AddReply(ctx, *r.ParentReviewID, r.ReviewID); err != nil {
			return nil, fmt.Errorf("update parent review %s: %w", *r.ParentReviewID, err)
		}
		metrics.ReviewsCreated.WithLabelValues("reply").Inc()
	} else {
		metrics.ReviewsCreated.WithLabelValues("root").Inc()
	}

	s.invalidate(ctx, r.NodeID)
	if r.IsRoot() {
		s.recordRating(ctx, r.NodeID)
	}
	return &r, nil
}

func (s *service) Get(ctx context.Context, id string) (*review.Review, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) GetByNode(ctx context.Context, nodeID string) ([]*review.Review, error) {
	return s.repo.ListByNode(ctx, nodeID)
}

func (s *service) Recent(ctx context.Context, nodeID string, limit int) ([]*review.Review, error) {
	return s.repo.Recent(ctx, nodeID, limit)
}

func (s *service) Update(ctx context.Context, id string, props []review.Property) (*review.Review, error) {
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: no properties to update", ErrInvalid)
	}
	var u review.Update
	for _, p := range props {
		if err := applyProperty(p, &u); err != nil {
			return nil, err
		}
	}
	u.DateModified = s.now().UTC()
	r, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, r.NodeID)
	if u.Rating != nil && r.IsRoot() {
		s.recordRating(ctx, r.NodeID)
	}
	return r, nil
}

func applyProperty(p review.Property, u *review.Update) error {
	switch p.FieldName {
	case "author":
		var v string
		if err := json.Unmarshal(p.Value, &v); err != nil {
			return fmt.Errorf("%w: author must be a string", ErrInvalid)
		}
		v = render.PlainText(v)
		u.Author = &v
	case "content":
		var v string
		if err := json.Unmarshal(p.Value, &v); err != nil {
			return fmt.Errorf("%w: content must be a string", ErrInvalid)
		}
		u.Content = &v
	case "rating":
		var v float64
		if err := json.Unmarshal(p.Value, &v); err != nil {
			return fmt.Errorf("%w: rating must be a number", ErrInvalid)
		}
		if err := checkRating(v); err != nil {
			return err
		}
		u.Rating = &v
	case "reviewId", "nodeId", "parentReviewId", "replies", "dateCreated", "dateModified":
		return fmt.Errorf("%w: field %q is immutable", ErrInvalid, p.FieldName)
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalid, p.FieldName)
	}
	return nil
}

func checkRating(v float64) error {
	if math.IsNaN(v) || v < review.MinRating || v > review.MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalid, review.MinRating, review.MaxRating)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id string) ([]string, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	removed := []string{id}
	seen := map[string]bool{id: true}
	frontier := r.Replies
	for len(frontier) > 0 {
		batch, err := s.repo.GetMany(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = nil
		for _, c := range batch {
			if seen[c.ReviewID] {
				continue
			}
			seen[c.ReviewID] = true
			removed = append(removed, c.ReviewID)
			frontier = append(frontier, c.Replies...)
		}
	}
	if _, err := s.repo.Delete(ctx, removed); err != nil {
		return nil, err
	}
	if !r.IsRoot() {
		if err := s.repo.RemoveReply(ctx, *r.ParentReviewID, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return removed, err
		}
	}
	s.invalidate(ctx, r.NodeID)
	if r.IsRoot() {
		s.recordRating(ctx, r.NodeID)
	}
	return removed, nil
}

func (s *service) DeleteAll(ctx context.Context) (int64, error) {
	nodeIDs, err := s.repo.NodeIDs(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, nodeIDs...)
	return n, nil
}

func (s *service) DeleteByNodeIDs(ctx context.Context, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	n, err := s.repo.DeleteByNodeIDs(ctx, nodeIDs)
	if err != nil {
		return err
	}
	logger.Debugf("removed %d reviews of %d deleted nodes", n, len(nodeIDs))
	s.invalidate(ctx, nodeIDs...)
	return nil
}

func (s *service) Thread(ctx context.Context, nodeID string) ([]*review.ThreadEntry, error) {
	gen, cached := s.generation(ctx, nodeID)
	if cached {
		if t, ok, err := s.cache.GetThread(ctx, nodeID, gen); err != nil {
			logger.Warnf("thread cache read %s: %v", nodeID, err)
		} else if ok {
			return t, nil
		}
	}
	list, err := s.repo.ListByNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	thread := BuildThread(list)
	if cached {
		if err := s.cache.SetThread(ctx, nodeID, gen, thread); err != nil {
			logger.Warnf("thread cache write %s: %v", nodeID, err)
		}
	}
	return thread, nil
}

// generation reads the node's cache generation before the store is read.
// cached is false when there is no cache or it cannot be reached.
func (s *service) generation(ctx context.Context, nodeID string) (gen int64, cached bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx, nodeID)
	if err != nil {
		logger.Warnf("cache generation %s: %v", nodeID, err)
		return 0, false
	}
	return gen, true
}

// BuildThread nests reviews under their parents following each parent's
// replies order. Roots keep the order of list. Reply ids that are missing
// from list are skipped and each review appears at most once.
func BuildThread(list []*review.Review) []*review.ThreadEntry {
	byID := make(map[string]*review.Review, len(list))
	for _, r := range list {
		byID[r.ReviewID] = r
	}
	seen := make(map[string]bool, len(list))
	var build func(r *review.Review, depth int) *review.ThreadEntry
	build = func(r *review.Review, depth int) *review.ThreadEntry {
		seen[r.ReviewID] = true
		e := &review.ThreadEntry{
			Review:      r,
			Depth:       depth,
			ContentHTML: render.Markdown(r.Content),
			Replies:     []*review.ThreadEntry{},
		}
		for _, id := range r.Replies {
			c, ok := byID[id]
			if !ok || seen[id] {
				continue
			}
			e.Replies = append(e.Replies, build(c, depth+1))
		}
		return e
	}
	out := []*review.ThreadEntry{}
	for _, r := range list {
		if r.IsRoot() && !seen[r.ReviewID] {
			out = append(out, build(r, 0))
		}
	}
	return out
}

func (s *service) Rating(ctx context.Context, nodeID string) (*review.Rating, error) {
	gen, cached := s.generation(ctx, nodeID)
	if cached {
		if r, ok, err := s.cache.GetRating(ctx, nodeID, gen); err != nil {
			logger.Warnf("rating cache read %s: %v", nodeID, err)
		} else if ok {
			return r, nil
		}
	}
	rating, err := s.computeRating(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if cached {
		if err := s.cache.SetRating(ctx, nodeID, gen, rating); err != nil {
			logger.Warnf("rating cache write %s: %v", nodeID, err)
		}
	}
	return rating, nil
}

// ratingAggregator is implemented by stores that summarize ratings
// server side.
type ratingAggregator interface {
	RatingSummary(ctx context.Context, nodeID string) (*review.Rating, error)
}

func (s *service) computeRating(ctx context.Context, nodeID string) (*review.Rating, error) {
	if agg, ok := s.repo.(ratingAggregator); ok {
		return agg.RatingSummary(ctx, nodeID)
	}
	list, err := s.repo.ListByNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	return Aggregate(nodeID, list), nil
}

// Aggregate summarizes the root reviews in list. Replies do not count
// towards a rating.
func Aggregate(nodeID string, list []*review.Review) *review.Rating {
	out := &review.Rating{NodeID: nodeID, RootIDs: []string{}}
	var sum float64
	for _, r := range list {
		if !r.IsRoot() {
			continue
		}
		out.Count++
		sum += r.Rating
		star := int(math.Floor(r.Rating))
		if star < review.MinRating {
			star = review.MinRating
		}
		if star > review.MaxRating {
			star = review.MaxRating
		}
		out.Histogram[star]++
		out.RootIDs = append(out.RootIDs, r.ReviewID)
	}
	if out.Count > 0 {
		avg := math.Round(sum/float64(out.Count)*100) / 100
		out.Average = &avg
	}
	return out
}

func (s *service) SyncRating(ctx context.Context, nodeID string) (*review.Rating, error) {
	rating, err := s.computeRating(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if s.nodes != nil {
		if err := s.nodes.RecordRating(ctx, nodeID, rating.Average, rating.RootIDs); err != nil {
			return nil, err
		}
	}
	return rating, nil
}

func (s *service) ReviewedNodeIDs(ctx context.Context) ([]string, error) {
	return s.repo.NodeIDs(ctx)
}

// recordRating pushes the current aggregate to the node. Failures are logged
// and left for the rating sync job to repair.
func (s *service) recordRating(ctx context.Context, nodeID string) {
	if s.nodes == nil {
		return
	}
	if _, err := s.SyncRating(ctx, nodeID); err != nil {
		logger.WithField("nodeId", nodeID).Warnf("record rating: %v", err)
	}
}

func (s *service) invalidate(ctx context.Context, nodeIDs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, nodeIDs...); err != nil {
		logger.Warnf("cache invalidate %v: %v", nodeIDs, err)
	}
}
