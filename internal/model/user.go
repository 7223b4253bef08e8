package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// UserProfile uses the external identity ID as its document ID. UserID is
// a redundant copy kept for filtered lookups.
type UserProfile struct {
	ID             string             `bson:"_id,omitempty" json:"id"`
	UserID         string             `bson:"userID" json:"userID"`
	Email          string             `bson:"email" json:"email"`
	CreatedAt      primitive.DateTime `bson:"createdAt" json:"createdAt"`
	RecentlyViewed []ViewedProduct    `bson:"recentlyViewed" json:"recentlyViewed"`
}

type ViewedProduct struct {
	ProductID string `bson:"productID" json:"productID"`
	ViewedAt  string `bson:"viewedAt" json:"viewedAt"`
}

const recentlyViewedLimit = 10

// PushRecentlyViewed returns the list with productID moved to the front,
// deduplicated and capped at 10 entries.
func PushRecentlyViewed(list []ViewedProduct, productID string, viewedAt string) []ViewedProduct {
	updated := make([]ViewedProduct, 0, len(list)+1)
	updated = append(updated, ViewedProduct{ProductID: productID, ViewedAt: viewedAt})
	for _, v := range list {
		if v.ProductID != productID {
			updated = append(updated, v)
		}
	}
	if len(updated) > recentlyViewedLimit {
		updated = updated[:recentlyViewedLimit]
	}
	return updated
}
