package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alang8/Help-Restaurant-Review/internal/app"
	"github.com/alang8/Help-Restaurant-Review/internal/node"
	nodeservice "github.com/alang8/Help-Restaurant-Review/internal/node/service"
	"github.com/alang8/Help-Restaurant-Review/internal/review"
	reviewservice "github.com/alang8/Help-Restaurant-Review/internal/review/service"
)

const seedFolder = "folder.seed"

var seedRestaurants = []struct {
	id, title string
	content   node.RestaurantContent
}{
	{"restaurant.seed-1", "Harry's Bar", node.RestaurantContent{
		Location:    "Calle Vallaresso 1323, Venice",
		Description: "Home of the Bellini.",
		Hours:       everyDay(12, 23),
	}},
	{"restaurant.seed-2", "Noodle Corner", node.RestaurantContent{
		Location:    "12 Market St",
		Description: "Hand pulled noodles, cash only.",
		PhoneNumber: "555-0101",
		Hours:       everyDay(11, 21.5),
	}},
	{"restaurant.seed-3", "Blue Door Cafe", node.RestaurantContent{
		Location:    "4 Harbour Rd",
		Description: "Breakfast all day.",
		Hours:       everyDay(7, 15),
	}},
}

var seedReviews = []review.Review{
	{ReviewID: "review.seed-1", Author: "ana", NodeID: "restaurant.seed-1", Content: "The **Bellini** lives up to the legend.", Rating: 4.5},
	{ReviewID: "review.seed-2", Author: "ben", NodeID: "restaurant.seed-1", Content: "Pricey but worth it once.", Rating: 3.5},
	{ReviewID: "review.seed-3", Author: "cat", NodeID: "restaurant.seed-1", ParentReviewID: strp("review.seed-2"), Content: "Agreed on the price."},
	{ReviewID: "review.seed-4", Author: "dan", NodeID: "restaurant.seed-2", Content: "Best *biang biang* in town.", Rating: 5},
}

func everyDay(start, end float64) node.WeeklyHours {
	h := node.OpenHours{Start: start, End: end}
	return node.WeeklyHours{Mon: h, Tue: h, Wed: h, Thu: h, Fri: h, Sat: h, Sun: h}
}

func strp(s string) *string { return &s }

// seed inserts the sample data. Records that already exist are skipped, so
// running it twice is harmless.
func seed(ctx context.Context, s *app.Services) (int, int, error) {
	var nodes, reviews int
	folder := &node.Node{NodeID: seedFolder, Type: node.TypeFolder, Title: "Sample restaurants"}
	if _, err := s.Nodes.Create(ctx, folder); err == nil {
		nodes++
	} else if !errors.Is(err, nodeservice.ErrDuplicate) {
		return nodes, reviews, fmt.Errorf("seed folder: %w", err)
	}

	for _, r := range seedRestaurants {
		content := r.content
		n := &node.Node{
			NodeID:     r.id,
			Type:       node.TypeRestaurant,
			Title:      r.title,
			Restaurant: &content,
			FilePath:   node.FilePath{Path: []string{seedFolder, r.id}},
		}
		if _, err := s.Nodes.Create(ctx, n); err == nil {
			nodes++
		} else if !errors.Is(err, nodeservice.ErrDuplicate) {
			return nodes, reviews, fmt.Errorf("seed %s: %w", r.id, err)
		}
	}

	for i := range seedReviews {
		rv := seedReviews[i]
		if _, err := s.Reviews.Create(ctx, &rv); err == nil {
			reviews++
		} else if !errors.Is(err, reviewservice.ErrDuplicate) {
			return nodes, reviews, fmt.Errorf("seed %s: %w", rv.ReviewID, err)
		}
	}
	return nodes, reviews, nil
}
