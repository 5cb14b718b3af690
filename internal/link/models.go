package link

import (
	"encoding/json"
	"time"
)

// Link connects two anchors. The node ids are copied from the anchors when
// the link is created so links can be listed without resolving anchors.
type Link struct {
	LinkID        string    `json:"linkId" bson:"linkId"`
	Anchor1ID     string    `json:"anchor1Id" bson:"anchor1Id"`
	Anchor2ID     string    `json:"anchor2Id" bson:"anchor2Id"`
	Anchor1NodeID string    `json:"anchor1NodeId" bson:"anchor1NodeId"`
	Anchor2NodeID string    `json:"anchor2NodeId" bson:"anchor2NodeId"`
	Title         string    `json:"title" bson:"title"`
	Explainer     string    `json:"explainer" bson:"explainer"`
	DateCreated   time.Time `json:"dateCreated" bson:"dateCreated"`
}

type Property struct {
	FieldName string          `json:"fieldName"`
	Value     json.RawMessage `json:"value"`
}

type Update struct {
	Title     *string
	Explainer *string
}
