package anchor

import (
	"encoding/json"
	"errors"
	"time"
)

type ExtentType string

const (
	ExtentText  ExtentType = "text"
	ExtentImage ExtentType = "image"
)

// Extent marks a region of a node's content. Text extents use the character
// fields, image extents the box fields.
type Extent struct {
	Type           ExtentType `bson:"type"`
	StartCharacter int        `bson:"startCharacter,omitempty"`
	EndCharacter   int        `bson:"endCharacter,omitempty"`
	Text           string     `bson:"text,omitempty"`
	Left           float64    `bson:"left,omitempty"`
	Top            float64    `bson:"top,omitempty"`
	Width          float64    `bson:"width,omitempty"`
	Height         float64    `bson:"height,omitempty"`
}

type textExtent struct {
	Type           ExtentType `json:"type"`
	StartCharacter int        `json:"startCharacter"`
	EndCharacter   int        `json:"endCharacter"`
	Text           string     `json:"text"`
}

type imageExtent struct {
	Type   ExtentType `json:"type"`
	Left   float64    `json:"left"`
	Top    float64    `json:"top"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
}

func (e Extent) MarshalJSON() ([]byte, error) {
	if e.Type == ExtentImage {
		return json.Marshal(imageExtent{e.Type, e.Left, e.Top, e.Width, e.Height})
	}
	return json.Marshal(textExtent{e.Type, e.StartCharacter, e.EndCharacter, e.Text})
}

func (e *Extent) UnmarshalJSON(b []byte) error {
	var probe struct {
		Type ExtentType `json:"type"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	switch probe.Type {
	case ExtentText:
		var t textExtent
		if err := json.Unmarshal(b, &t); err != nil {
			return err
		}
		*e = Extent{Type: t.Type, StartCharacter: t.StartCharacter, EndCharacter: t.EndCharacter, Text: t.Text}
	case ExtentImage:
		var i imageExtent
		if err := json.Unmarshal(b, &i); err != nil {
			return err
		}
		*e = Extent{Type: i.Type, Left: i.Left, Top: i.Top, Width: i.Width, Height: i.Height}
	default:
		return errors.New(`extent type must be "text" or "image"`)
	}
	return nil
}

// Validate checks the extent's own bounds.
func (e *Extent) Validate() error {
	switch e.Type {
	case ExtentText:
		if e.StartCharacter < 0 || e.EndCharacter <= e.StartCharacter {
			return errors.New("text extent needs 0 <= startCharacter < endCharacter")
		}
	case ExtentImage:
		if e.Left < 0 || e.Top < 0 || e.Width < 0 || e.Height < 0 {
			return errors.New("image extent values must not be negative")
		}
	default:
		return errors.New("unknown extent type")
	}
	return nil
}

// Anchor is a linkable region of a node. A nil Extent anchors the whole node.
type Anchor struct {
	AnchorID    string    `json:"anchorId" bson:"anchorId"`
	NodeID      string    `json:"nodeId" bson:"nodeId"`
	Extent      *Extent   `json:"extent" bson:"extent"`
	DateCreated time.Time `json:"dateCreated" bson:"dateCreated"`
}
