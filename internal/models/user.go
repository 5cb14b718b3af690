package models

import "time"

// Reviewer is a signed-in user as seen by the review service, mapped from
// Keycloak claims. DisplayName is what new reviews are attributed to when the
// client leaves the author empty.
type Reviewer struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Sub         string    `bson:"sub" json:"sub"`
	Email       string    `bson:"email" json:"email"`
	Name        string    `bson:"name" json:"name"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
