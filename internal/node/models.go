package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Type is the kind of content a node holds.
type Type string

const (
	TypeText       Type = "text"
	TypeImage      Type = "image"
	TypeFolder     Type = "folder"
	TypeRestaurant Type = "restaurant"
)

// Types lists every valid node type.
var Types = []Type{TypeText, TypeImage, TypeFolder, TypeRestaurant}

// Valid reports whether t is a known node type.
func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// FilePath locates a node in the tree. Path lists ancestor ids root first and
// ends with the node's own id; Children holds the ids of direct children.
type FilePath struct {
	Path     []string `json:"path" bson:"path"`
	Children []string `json:"children" bson:"children"`
}

// ParentID returns the id of the direct parent, or "" for a root.
func (f FilePath) ParentID() string {
	if len(f.Path) < 2 {
		return ""
	}
	return f.Path[len(f.Path)-2]
}

// ImageDim records the original and displayed size of an image node.
type ImageDim struct {
	XOriginal float64 `json:"xOriginal" bson:"xOriginal"`
	YOriginal float64 `json:"yOriginal" bson:"yOriginal"`
	XCurrent  float64 `json:"xCurrent" bson:"xCurrent"`
	YCurrent  float64 `json:"yCurrent" bson:"yCurrent"`
}

// OpenHours is one day's opening window, in hours 0..24.
type OpenHours struct {
	Start float64 `json:"start" bson:"start"`
	End   float64 `json:"end" bson:"end"`
}

// WeeklyHours holds opening hours per weekday.
type WeeklyHours struct {
	Mon OpenHours `json:"mon" bson:"mon"`
	Tue OpenHours `json:"tue" bson:"tue"`
	Wed OpenHours `json:"wed" bson:"wed"`
	Thu OpenHours `json:"thu" bson:"thu"`
	Fri OpenHours `json:"fri" bson:"fri"`
	Sat OpenHours `json:"sat" bson:"sat"`
	Sun OpenHours `json:"sun" bson:"sun"`
}

func (w WeeklyHours) days() []OpenHours {
	return []OpenHours{w.Mon, w.Tue, w.Wed, w.Thu, w.Fri, w.Sat, w.Sun}
}

// RestaurantContent is the content of a restaurant node. Rating and Reviews
// are owned by the server: Rating is the average of the root reviews (nil
// when there are none) and Reviews lists the root review ids.
type RestaurantContent struct {
	Location    string      `json:"location" bson:"location"`
	Description string      `json:"description" bson:"description"`
	WebsiteURL  string      `json:"websiteUrl" bson:"websiteUrl"`
	ImageURL    string      `json:"imageUrl" bson:"imageUrl"`
	PhoneNumber string      `json:"phoneNumber" bson:"phoneNumber"`
	Email       string      `json:"email" bson:"email"`
	Hours       WeeklyHours `json:"hours" bson:"hours"`
	Rating      *float64    `json:"rating" bson:"rating"`
	Reviews     []string    `json:"reviews" bson:"reviews"`
}

// Validate checks the hours are within a day.
func (r *RestaurantContent) Validate() error {
	for _, d := range r.Hours.days() {
		if d.Start < 0 || d.Start > 24 || d.End < 0 || d.End > 24 {
			return errors.New("hours must be between 0 and 24")
		}
	}
	return nil
}

// Node is a unit of content in the directory tree. Text, image and folder
// nodes keep their content in Content; restaurant nodes in Restaurant. On the
// wire both appear as "content".
type Node struct {
	NodeID      string             `json:"nodeId" bson:"nodeId"`
	Type        Type               `json:"type" bson:"type"`
	Title       string             `json:"title" bson:"title"`
	Content     string             `json:"-" bson:"content,omitempty"`
	Restaurant  *RestaurantContent `json:"-" bson:"restaurant,omitempty"`
	FilePath    FilePath           `json:"filePath" bson:"filePath"`
	ImageDim    *ImageDim          `json:"imageDim,omitempty" bson:"imageDim,omitempty"`
	Slug        string             `json:"slug" bson:"slug"`
	DateCreated time.Time          `json:"dateCreated" bson:"dateCreated"`
}

type nodeAlias Node

type wireNode struct {
	*nodeAlias
	Content json.RawMessage `json:"content"`
}

// MarshalJSON emits the type-specific content under "content".
func (n Node) MarshalJSON() ([]byte, error) {
	var content interface{} = n.Content
	if n.Type == TypeRestaurant {
		content = n.Restaurant
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	a := nodeAlias(n)
	return json.Marshal(wireNode{nodeAlias: &a, Content: raw})
}

// UnmarshalJSON decodes "content" according to "type".
func (n *Node) UnmarshalJSON(b []byte) error {
	w := wireNode{nodeAlias: (*nodeAlias)(n)}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	n.Content, n.Restaurant = "", nil
	if len(w.Content) == 0 || string(w.Content) == "null" {
		return nil
	}
	if n.Type == TypeRestaurant {
		var rc RestaurantContent
		if err := json.Unmarshal(w.Content, &rc); err != nil {
			return fmt.Errorf("restaurant content: %w", err)
		}
		n.Restaurant = &rc
		return nil
	}
	if err := json.Unmarshal(w.Content, &n.Content); err != nil {
		return fmt.Errorf("%s content must be a string: %w", n.Type, err)
	}
	return nil
}

// IsRoot reports whether the node sits at the top of the tree.
func (n *Node) IsRoot() bool {
	return len(n.FilePath.Path) <= 1
}

// RecursiveNodeTree is a node with its descendants expanded.
type RecursiveNodeTree struct {
	Node     *Node                `json:"node"`
	Children []*RecursiveNodeTree `json:"children"`
}

// Update is a validated set of field changes; nil fields are left alone.
type Update struct {
	Title      *string
	Slug       *string
	Content    *string
	Restaurant *RestaurantContent
	ImageDim   *ImageDim
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Restaurant == nil && u.ImageDim == nil
}

// Property is a single {fieldName, value} change requested by a client.
type Property struct {
	FieldName string          `json:"fieldName"`
	Value     json.RawMessage `json:"value"`
}

// RatingSummary is what the review side reports back for a restaurant.
type RatingSummary struct {
	Average *float64
	RootIDs []string
}
