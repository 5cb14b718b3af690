package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alang8/Help-Restaurant-Review/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRemover struct{ got []string }

func (r *recordingRemover) DeleteByNodeIDs(_ context.Context, ids []string) error {
	r.got = append(r.got, ids...)
	return nil
}

func mustCreate(t *testing.T, svc Service, n *node.Node) *node.Node {
	t.Helper()
	out, err := svc.Create(context.Background(), n)
	require.NoError(t, err)
	return out
}

func TestCreate_AssignsIDSlugAndLinksParent(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	root := mustCreate(t, svc, &node.Node{Type: node.TypeFolder, Title: "Providence <b>Eats</b>"})
	assert.Equal(t, "folder", root.NodeID[:6])
	assert.Equal(t, "Providence Eats", root.Title)
	assert.Equal(t, "providence-eats", root.Slug)
	assert.Equal(t, []string{root.NodeID}, root.FilePath.Path)

	child := mustCreate(t, svc, &node.Node{
		NodeID: "restaurant.x", Type: node.TypeRestaurant, Title: "Den Den",
		FilePath:   node.FilePath{Path: []string{root.NodeID, "restaurant.x"}},
		Restaurant: &node.RestaurantContent{Location: "Thayer St", Reviews: []string{"bogus"}},
	})
	assert.Nil(t, child.Restaurant.Rating)
	assert.Empty(t, child.Restaurant.Reviews)

	parent, err := svc.Get(ctx, root.NodeID)
	require.NoError(t, err)
	assert.Equal(t, []string{"restaurant.x"}, parent.FilePath.Children)
}

func TestCreate_Rejections(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()

	_, err := svc.Create(ctx, &node.Node{Type: "video", Title: "x"})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Create(ctx, &node.Node{Type: node.TypeText, Title: "  "})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Create(ctx, &node.Node{NodeID: "text.1", Type: node.TypeText, Title: "a", FilePath: node.FilePath{Path: []string{"folder.none", "text.1"}}})
	require.ErrorIs(t, err, ErrParentNotFound)

	_, err = svc.Create(ctx, &node.Node{NodeID: "text.1", Type: node.TypeText, Title: "a", FilePath: node.FilePath{Path: []string{"text.2"}}})
	require.ErrorIs(t, err, ErrInvalid)

	mustCreate(t, svc, &node.Node{NodeID: "text.1", Type: node.TypeText, Title: "a"})
	_, err = svc.Create(ctx, &node.Node{NodeID: "text.1", Type: node.TypeText, Title: "a"})
	require.ErrorIs(t, err, ErrDuplicate)

	bad := &node.RestaurantContent{Hours: node.WeeklyHours{Mon: node.OpenHours{Start: 9, End: 25}}}
	_, err = svc.Create(ctx, &node.Node{Type: node.TypeRestaurant, Title: "late", Restaurant: bad})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestUpdate_Properties(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	r := mustCreate(t, svc, &node.Node{NodeID: "restaurant.1", Type: node.TypeRestaurant, Title: "Old"})
	avg := 4.0
	require.NoError(t, svc.RecordRating(ctx, r.NodeID, &avg, []string{"review.1"}))

	props := []node.Property{
		{FieldName: "title", Value: json.RawMessage(`"New Name"`)},
		{FieldName: "content", Value: json.RawMessage(`{"location":"Wickenden","rating":1,"reviews":[]}`)},
	}
	got, err := svc.Update(ctx, r.NodeID, props)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Title)
	assert.Equal(t, "new-name", got.Slug)
	assert.Equal(t, "Wickenden", got.Restaurant.Location)
	require.NotNil(t, got.Restaurant.Rating)
	assert.Equal(t, 4.0, *got.Restaurant.Rating, "rating is server owned")
	assert.Equal(t, []string{"review.1"}, got.Restaurant.Reviews)

	_, err = svc.Update(ctx, r.NodeID, []node.Property{{FieldName: "nodeId", Value: json.RawMessage(`"x"`)}})
	require.ErrorIs(t, err, ErrInvalid)
	_, err = svc.Update(ctx, r.NodeID, []node.Property{{FieldName: "imageDim", Value: json.RawMessage(`{}`)}})
	require.ErrorIs(t, err, ErrInvalid)
	_, err = svc.Update(ctx, r.NodeID, []node.Property{{FieldName: "title", Value: json.RawMessage(`5`)}})
	require.ErrorIs(t, err, ErrInvalid)
	_, err = svc.Update(ctx, r.NodeID, nil)
	require.ErrorIs(t, err, ErrInvalid)
	_, err = svc.Update(ctx, "restaurant.none", props)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMove_RewritesSubtree(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	mustCreate(t, svc, &node.Node{NodeID: "folder.a", Type: node.TypeFolder, Title: "a"})
	mustCreate(t, svc, &node.Node{NodeID: "folder.b", Type: node.TypeFolder, Title: "b"})
	mustCreate(t, svc, &node.Node{NodeID: "folder.c", Type: node.TypeFolder, Title: "c", FilePath: node.FilePath{Path: []string{"folder.a", "folder.c"}}})
	mustCreate(t, svc, &node.Node{NodeID: "text.d", Type: node.TypeText, Title: "d", FilePath: node.FilePath{Path: []string{"folder.a", "folder.c", "text.d"}}})

	moved, err := svc.Move(ctx, "folder.c", "folder.b")
	require.NoError(t, err)
	assert.Equal(t, []string{"folder.b", "folder.c"}, moved.FilePath.Path)

	d, _ := svc.Get(ctx, "text.d")
	assert.Equal(t, []string{"folder.b", "folder.c", "text.d"}, d.FilePath.Path)
	a, _ := svc.Get(ctx, "folder.a")
	assert.Empty(t, a.FilePath.Children)
	b, _ := svc.Get(ctx, "folder.b")
	assert.Equal(t, []string{"folder.c"}, b.FilePath.Children)

	_, err = svc.Move(ctx, "folder.b", "text.d")
	require.ErrorIs(t, err, ErrInvalidMove)
	_, err = svc.Move(ctx, "folder.b", "folder.b")
	require.ErrorIs(t, err, ErrInvalidMove)

	root, err := svc.Move(ctx, "folder.c", "")
	require.NoError(t, err)
	assert.True(t, root.IsRoot())
	d, _ = svc.Get(ctx, "text.d")
	assert.Equal(t, []string{"folder.c", "text.d"}, d.FilePath.Path)
}

func TestDelete_CascadesSubtree(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	rm := &recordingRemover{}
	svc.OnDelete(rm)
	mustCreate(t, svc, &node.Node{NodeID: "folder.a", Type: node.TypeFolder, Title: "a"})
	mustCreate(t, svc, &node.Node{NodeID: "folder.b", Type: node.TypeFolder, Title: "b", FilePath: node.FilePath{Path: []string{"folder.a", "folder.b"}}})
	mustCreate(t, svc, &node.Node{NodeID: "text.c", Type: node.TypeText, Title: "c", FilePath: node.FilePath{Path: []string{"folder.a", "folder.b", "text.c"}}})

	removed, err := svc.Delete(ctx, "folder.b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"folder.b", "text.c"}, removed)
	assert.ElementsMatch(t, removed, rm.got)

	_, err = svc.Get(ctx, "text.c")
	require.ErrorIs(t, err, ErrNotFound)
	a, _ := svc.Get(ctx, "folder.a")
	assert.Empty(t, a.FilePath.Children)

	_, err = svc.Delete(ctx, "folder.b")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRootsAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	mustCreate(t, svc, &node.Node{NodeID: "folder.a", Type: node.TypeFolder, Title: "Pizza places"})
	mustCreate(t, svc, &node.Node{NodeID: "restaurant.b", Type: node.TypeRestaurant, Title: "Fellini", FilePath: node.FilePath{Path: []string{"folder.a", "restaurant.b"}}})
	mustCreate(t, svc, &node.Node{NodeID: "text.c", Type: node.TypeText, Title: "loose note", Content: "pizza is good"})

	trees, err := svc.Roots(ctx)
	require.NoError(t, err)
	require.Len(t, trees, 2)
	for _, tr := range trees {
		if tr.Node.NodeID == "folder.a" {
			require.Len(t, tr.Children, 1)
			assert.Equal(t, "restaurant.b", tr.Children[0].Node.NodeID)
		}
	}

	res, err := svc.Search(ctx, "pizza", "")
	require.NoError(t, err)
	assert.Len(t, res, 2)
	_, err = svc.Search(ctx, "pizza", "video")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestRecordRating_IgnoresNonRestaurants(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	mustCreate(t, svc, &node.Node{NodeID: "text.a", Type: node.TypeText, Title: "a"})
	avg := 3.0
	require.NoError(t, svc.RecordRating(ctx, "text.a", &avg, nil))
	require.ErrorIs(t, svc.RecordRating(ctx, "text.none", &avg, nil), ErrNotFound)
}
