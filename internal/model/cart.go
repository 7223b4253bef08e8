package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// CartItem is one cart line. Repeated adds of the same product create
// separate lines.
type CartItem struct {
	ID          string             `bson:"_id,omitempty" json:"id"`
	ProductID   string             `bson:"productId" json:"productId"`
	UserID      string             `bson:"userId" json:"userId"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	ImageURL    string             `bson:"imageURL" json:"imageURL"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   primitive.DateTime `bson:"createdAt" json:"createdAt"`
}
