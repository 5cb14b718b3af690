package review

import (
	"encoding/json"
	"time"
)

// Review is a rating and comment on a node. A nil ParentReviewID marks a
// root review; replies carry the id of the review they answer. Replies is
// maintained by the server.
type Review struct {
	ReviewID       string    `json:"reviewId" bson:"reviewId"`
	Author         string    `json:"author" bson:"author"`
	NodeID         string    `json:"nodeId" bson:"nodeId"`
	ParentReviewID *string   `json:"parentReviewId" bson:"parentReviewId"`
	Content        string    `json:"content" bson:"content"`
	Rating         float64   `json:"rating" bson:"rating"`
	Replies        []string  `json:"replies" bson:"replies"`
	DateCreated    time.Time `json:"dateCreated" bson:"dateCreated"`
	DateModified   time.Time `json:"dateModified" bson:"dateModified"`
}

const (
	MinRating = 0
	MaxRating = 5
)

// IsRoot reports whether r answers the node rather than another review.
func (r *Review) IsRoot() bool {
	return r.ParentReviewID == nil || *r.ParentReviewID == ""
}

// Property is a single {fieldName, value} change requested by a client.
type Property struct {
	FieldName string          `json:"fieldName"`
	Value     json.RawMessage `json:"value"`
}

// Update is a validated set of changes; nil fields are left alone.
type Update struct {
	Author       *string
	Content      *string
	Rating       *float64
	DateModified time.Time
}

// ThreadEntry is one review in a rendered thread, with its replies nested.
type ThreadEntry struct {
	Review      *Review        `json:"review"`
	Depth       int            `json:"depth"`
	ContentHTML string         `json:"contentHtml"`
	Replies     []*ThreadEntry `json:"replies"`
}

// Rating aggregates the root reviews of a node. Average is nil when there
// are none. Histogram is indexed by whole stars 0..5.
type Rating struct {
	NodeID    string             `json:"nodeId"`
	Count     int                `json:"count"`
	Average   *float64           `json:"average"`
	Histogram [MaxRating + 1]int `json:"histogram"`
	RootIDs   []string           `json:"rootIds"`
}
