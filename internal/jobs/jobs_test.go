package jobs

import (
	"context"
	"sync"
	"testing"

	"github.com/alang8/Help-Restaurant-Review/internal/node"
	nodeservice "github.com/alang8/Help-Restaurant-Review/internal/node/service"
	"github.com/alang8/Help-Restaurant-Review/internal/review"
	"github.com/alang8/Help-Restaurant-Review/internal/review/repository"
	reviewservice "github.com/alang8/Help-Restaurant-Review/internal/review/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingJob) Name() string     { return "blocking" }
func (b *blockingJob) Schedule() string { return "@every 1h" }
func (b *blockingJob) Run() {
	close(b.started)
	<-b.release
}

func TestTaskExecutor_SkipsOverlappingRuns(t *testing.T) {
	job := &blockingJob{started: make(chan struct{}), release: make(chan struct{})}
	ex := NewTaskExecutor(job)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.True(t, ex.tryRun(job))
	}()
	<-job.started
	assert.False(t, ex.tryRun(job))
	close(job.release)
	wg.Wait()
	assert.False(t, ex.running.Contains("blocking"))
}

type badSchedule struct{}

func (badSchedule) Name() string     { return "bad" }
func (badSchedule) Schedule() string { return "not a schedule" }
func (badSchedule) Run()             {}

func TestTaskExecutor_InvalidSchedule(t *testing.T) {
	require.Error(t, NewTaskExecutor(badSchedule{}).Start())
}

func TestRatingSync_RepairsStaleRatings(t *testing.T) {
	ctx := context.Background()
	nodes := nodeservice.NewMemoryService()
	for _, n := range []*node.Node{
		{NodeID: "restaurant.1", Type: node.TypeRestaurant, Title: "a"},
		{NodeID: "restaurant.2", Type: node.TypeRestaurant, Title: "b"},
	} {
		_, err := nodes.Create(ctx, n)
		require.NoError(t, err)
	}
	stale := 1.0
	require.NoError(t, nodes.RecordRating(ctx, "restaurant.2", &stale, []string{"review.gone"}))

	// reviews written straight to the store never reach the node
	repo := repository.NewMemoryRepo()
	require.NoError(t, repo.Create(ctx, &review.Review{ReviewID: "review.1", NodeID: "restaurant.1", Rating: 5}))
	require.NoError(t, repo.Create(ctx, &review.Review{ReviewID: "review.2", NodeID: "restaurant.1", Rating: 3}))
	require.NoError(t, repo.Create(ctx, &review.Review{ReviewID: "review.3", NodeID: "restaurant.deleted", Rating: 3}))
	reviews := reviewservice.New(repo, reviewservice.WithNodes(nodes))

	task := NewRatingSyncTask("", nodes, reviews)
	assert.Equal(t, "@every 10m", task.Schedule())
	n, err := task.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	r1, _ := nodes.Get(ctx, "restaurant.1")
	require.NotNil(t, r1.Restaurant.Rating)
	assert.Equal(t, 4.0, *r1.Restaurant.Rating)
	assert.ElementsMatch(t, []string{"review.1", "review.2"}, r1.Restaurant.Reviews)

	r2, _ := nodes.Get(ctx, "restaurant.2")
	assert.Nil(t, r2.Restaurant.Rating)
	assert.Empty(t, r2.Restaurant.Reviews)
}
