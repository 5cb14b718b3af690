package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/node"
	noderepo "github.com/alang8/Help-Restaurant-Review/internal/node/repository"
	"github.com/alang8/Help-Restaurant-Review/internal/review"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/metrics"
	mapset "github.com/deckarep/golang-set/v2"
)

type RestaurantLister interface {
	ListByType(ctx context.Context, t node.Type) ([]*node.Node, error)
}

type RatingSyncer interface {
	SyncRating(ctx context.Context, nodeID string) (*review.Rating, error)
	ReviewedNodeIDs(ctx context.Context) ([]string, error)
}

// RatingSyncTask recomputes the stored rating of every restaurant. Rating
// write-back on review changes is best effort; this job repairs whatever it
// missed.
type RatingSyncTask struct {
	nodes    RestaurantLister
	reviews  RatingSyncer
	schedule string
	timeout  time.Duration
}

func NewRatingSyncTask(schedule string, nodes RestaurantLister, reviews RatingSyncer) *RatingSyncTask {
	if schedule == "" {
		schedule = "@every 10m"
	}
	return &RatingSyncTask{nodes: nodes, reviews: reviews, schedule: schedule, timeout: 2 * time.Minute}
}

func (r *RatingSyncTask) Name() string     { return "rating_sync" }
func (r *RatingSyncTask) Schedule() string { return r.schedule }

func (r *RatingSyncTask) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	n, err := r.Sync(ctx)
	if err != nil {
		metrics.RatingSyncRuns.WithLabelValues("error").Inc()
		logger.Errorf("rating sync: %v", err)
		return
	}
	metrics.RatingSyncRuns.WithLabelValues("ok").Inc()
	logger.Infof("rating sync updated %d restaurants", n)
}

// Sync returns the number of nodes whose rating was recorded.
func (r *RatingSyncTask) Sync(ctx context.Context) (int, error) {
	targets := mapset.NewThreadUnsafeSet[string]()
	restaurants, err := r.nodes.ListByType(ctx, node.TypeRestaurant)
	if err != nil {
		return 0, err
	}
	for _, n := range restaurants {
		targets.Add(n.NodeID)
	}
	reviewed, err := r.reviews.ReviewedNodeIDs(ctx)
	if err != nil {
		return 0, err
	}
	targets.Append(reviewed...)

	synced := 0
	for _, id := range targets.ToSlice() {
		if _, err := r.reviews.SyncRating(ctx, id); err != nil {
			if errors.Is(err, noderepo.ErrNotFound) {
				logger.Debugf("rating sync: reviews reference missing node %s", id)
				continue
			}
			return synced, err
		}
		synced++
	}
	return synced, nil
}
