package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/node"
	nodeservice "github.com/alang8/Help-Restaurant-Review/internal/node/service"
	"github.com/alang8/Help-Restaurant-Review/internal/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

type tick struct{ t time.Time }

func (c *tick) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func setup(t *testing.T) (Service, nodeservice.Service) {
	t.Helper()
	nodes := nodeservice.NewMemoryService()
	_, err := nodes.Create(context.Background(), &node.Node{NodeID: "restaurant.1", Type: node.TypeRestaurant, Title: "Harry's Bar"})
	require.NoError(t, err)
	clock := &tick{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewMemoryService(WithNodes(nodes), WithClock(clock.now))
	nodes.OnDelete(svc)
	return svc, nodes
}

func TestCreate_RootAndReplyLinkage(t *testing.T) {
	ctx := context.Background()
	svc, nodes := setup(t)

	root, err := svc.Create(ctx, &review.Review{ReviewID: "review.1", Author: "ana", NodeID: "restaurant.1", Content: "great burgers", Rating: 4, Replies: []string{"bogus"}})
	require.NoError(t, err)
	assert.Empty(t, root.Replies)
	assert.False(t, root.DateCreated.IsZero())
	assert.Equal(t, root.DateCreated, root.DateModified)

	reply, err := svc.Create(ctx, &review.Review{ReviewID: "review.2", Author: "ben", NodeID: "restaurant.1", ParentReviewID: strp("review.1"), Content: "agreed", Rating: 0})
	require.NoError(t, err)
	assert.False(t, reply.IsRoot())

	parent, err := svc.Get(ctx, "review.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"review.2"}, parent.Replies)

	n, err := nodes.Get(ctx, "restaurant.1")
	require.NoError(t, err)
	require.NotNil(t, n.Restaurant.Rating)
	assert.Equal(t, 4.0, *n.Restaurant.Rating, "replies do not count")
	assert.Equal(t, []string{"review.1"}, n.Restaurant.Reviews)
}

func TestCreate_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, nodes := setup(t)
	_, err := svc.Create(ctx, &review.Review{ReviewID: "review.1", NodeID: "restaurant.1", Rating: 3})
	require.NoError(t, err)
	_, err = nodes.Create(ctx, &node.Node{NodeID: "restaurant.2", Type: node.TypeRestaurant, Title: "Noodle Corner"})
	require.NoError(t, err)

	cases := map[string]struct {
		in   *review.Review
		want error
	}{
		"nil":          {nil, ErrInvalid},
		"no node":      {&review.Review{ReviewID: "r.a", Rating: 1}, ErrInvalid},
		"rating high":  {&review.Review{ReviewID: "r.b", NodeID: "restaurant.1", Rating: 5.5}, ErrInvalid},
		"rating low":   {&review.Review{ReviewID: "r.c", NodeID: "restaurant.1", Rating: -1}, ErrInvalid},
		"duplicate":    {&review.Review{ReviewID: "review.1", NodeID: "restaurant.1", Rating: 1}, ErrDuplicate},
		"missing node": {&review.Review{ReviewID: "r.d", NodeID: "restaurant.none", Rating: 1}, ErrNodeNotFound},
		"no parent":    {&review.Review{ReviewID: "r.e", NodeID: "restaurant.1", ParentReviewID: strp("review.none"), Rating: 1}, ErrParentNotFound},
		"other node":   {&review.Review{ReviewID: "r.f", NodeID: "restaurant.2", ParentReviewID: strp("review.1")}, ErrInvalid},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}

	parent, err := svc.Get(ctx, "review.1")
	require.NoError(t, err)
	assert.Empty(t, parent.Replies, "rejected replies must not be linked")
}

func TestCreate_GeneratesIDAndSanitizesAuthor(t *testing.T) {
	svc, _ := setup(t)
	r, err := svc.Create(context.Background(), &review.Review{NodeID: "restaurant.1", Author: "<script>x</script>Cat", Rating: 2, ParentReviewID: strp("")})
	require.NoError(t, err)
	assert.Contains(t, r.ReviewID, "review.")
	assert.Equal(t, "Cat", r.Author)
	assert.True(t, r.IsRoot())
}

func TestUpdate_Properties(t *testing.T) {
	ctx := context.Background()
	svc, nodes := setup(t)
	orig, err := svc.Create(ctx, &review.Review{ReviewID: "review.1", NodeID: "restaurant.1", Content: "ok", Rating: 3})
	require.NoError(t, err)

	got, err := svc.Update(ctx, "review.1", []review.Property{
		{FieldName: "content", Value: json.RawMessage(`"actually great"`)},
		{FieldName: "rating", Value: json.RawMessage(`5`)},
	})
	require.NoError(t, err)
	assert.Equal(t, "actually great", got.Content)
	assert.Equal(t, 5.0, got.Rating)
	assert.True(t, got.DateModified.After(orig.DateModified))

	n, _ := nodes.Get(ctx, "restaurant.1")
	assert.Equal(t, 5.0, *n.Restaurant.Rating)

	for _, p := range []review.Property{
		{FieldName: "parentReviewId", Value: json.RawMessage(`"x"`)},
		{FieldName: "replies", Value: json.RawMessage(`[]`)},
		{FieldName: "rating", Value: json.RawMessage(`"five"`)},
		{FieldName: "rating", Value: json.RawMessage(`9`)},
		{FieldName: "colour", Value: json.RawMessage(`"red"`)},
	} {
		_, err := svc.Update(ctx, "review.1", []review.Property{p})
		require.ErrorIs(t, err, ErrInvalid, p.FieldName)
	}
	_, err = svc.Update(ctx, "review.none", []review.Property{{FieldName: "content", Value: json.RawMessage(`"x"`)}})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_RemovesSubtreeAndUnlinksParent(t *testing.T) {
	ctx := context.Background()
	svc, nodes := setup(t)
	for _, r := range []*review.Review{
		{ReviewID: "review.1", NodeID: "restaurant.1", Rating: 2},
		{ReviewID: "review.2", NodeID: "restaurant.1", Rating: 4},
		{ReviewID: "review.3", NodeID: "restaurant.1", ParentReviewID: strp("review.1")},
		{ReviewID: "review.4", NodeID: "restaurant.1", ParentReviewID: strp("review.3")},
		{ReviewID: "review.5", NodeID: "restaurant.1", ParentReviewID: strp("review.1")},
	} {
		_, err := svc.Create(ctx, r)
		require.NoError(t, err)
	}

	removed, err := svc.Delete(ctx, "review.3")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"review.3", "review.4"}, removed)
	p, _ := svc.Get(ctx, "review.1")
	assert.Equal(t, []string{"review.5"}, p.Replies)

	removed, err = svc.Delete(ctx, "review.1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"review.1", "review.5"}, removed)

	n, _ := nodes.Get(ctx, "restaurant.1")
	assert.Equal(t, 4.0, *n.Restaurant.Rating)
	assert.Equal(t, []string{"review.2"}, n.Restaurant.Reviews)

	_, err = svc.Delete(ctx, "review.1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestThread_NestsInReplyOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	for _, r := range []*review.Review{
		{ReviewID: "review.a", NodeID: "restaurant.1", Content: "**loved** it", Rating: 5},
		{ReviewID: "review.b", NodeID: "restaurant.1", ParentReviewID: strp("review.a"), Content: "same"},
		{ReviewID: "review.c", NodeID: "restaurant.1", Content: "meh", Rating: 2},
		{ReviewID: "review.d", NodeID: "restaurant.1", ParentReviewID: strp("review.b"), Content: "<script>alert(1)</script>"},
	} {
		_, err := svc.Create(ctx, r)
		require.NoError(t, err)
	}

	thread, err := svc.Thread(ctx, "restaurant.1")
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "review.a", thread[0].Review.ReviewID)
	assert.Contains(t, thread[0].ContentHTML, "<strong>loved</strong>")
	require.Len(t, thread[0].Replies, 1)
	b := thread[0].Replies[0]
	assert.Equal(t, 1, b.Depth)
	require.Len(t, b.Replies, 1)
	assert.Equal(t, 2, b.Replies[0].Depth)
	assert.NotContains(t, b.Replies[0].ContentHTML, "<script>")
	assert.Equal(t, "review.c", thread[1].Review.ReviewID)
}

func TestBuildThread_SkipsMissingAndCycles(t *testing.T) {
	list := []*review.Review{
		{ReviewID: "a", Replies: []string{"b", "gone"}},
		{ReviewID: "b", ParentReviewID: strp("a"), Replies: []string{"a"}},
	}
	thread := BuildThread(list)
	require.Len(t, thread, 1)
	require.Len(t, thread[0].Replies, 1)
	assert.Empty(t, thread[0].Replies[0].Replies)
}

func TestAggregate(t *testing.T) {
	rating := Aggregate("n", []*review.Review{
		{ReviewID: "a", Rating: 5},
		{ReviewID: "b", Rating: 4.5},
		{ReviewID: "c", Rating: 0},
		{ReviewID: "d", ParentReviewID: strp("a"), Rating: 1},
	})
	assert.Equal(t, 3, rating.Count)
	require.NotNil(t, rating.Average)
	assert.Equal(t, 3.17, *rating.Average)
	assert.Equal(t, [6]int{1, 0, 0, 0, 1, 1}, rating.Histogram)
	assert.Equal(t, []string{"a", "b", "c"}, rating.RootIDs)

	empty := Aggregate("n", nil)
	assert.Nil(t, empty.Average)
	assert.Zero(t, empty.Count)
}

func TestNodeDeleteCascadesToReviews(t *testing.T) {
	ctx := context.Background()
	svc, nodes := setup(t)
	_, err := svc.Create(ctx, &review.Review{ReviewID: "review.1", NodeID: "restaurant.1", Rating: 3})
	require.NoError(t, err)

	_, err = nodes.Delete(ctx, "restaurant.1")
	require.NoError(t, err)
	list, err := svc.GetByNode(ctx, "restaurant.1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	_, err := svc.Create(ctx, &review.Review{ReviewID: "review.1", NodeID: "restaurant.1", Rating: 3})
	require.NoError(t, err)
	n, err := svc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	ids, _ := svc.ReviewedNodeIDs(ctx)
	assert.Empty(t, ids)
}
