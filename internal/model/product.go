package model

import "go.mongodb.org/mongo-driver/bson/primitive"

type Product struct {
	ID            string             `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Price         float64            `bson:"price" json:"price"`
	ImageURL      string             `bson:"imageURL" json:"imageURL"`
	Category      string             `bson:"category" json:"category"`
	Description   string             `bson:"description" json:"description"`
	StockQuantity int                `bson:"stockQuantity" json:"stockQuantity"`
	Reviews       []Review           `bson:"reviews" json:"reviews"`
	CreatedAt     primitive.DateTime `bson:"createdAt" json:"createdAt"`
}

// Review is embedded in a Product and is mutated by rewriting the full
// reviews array. CreatedAt is an RFC 3339 string set by the writer.
type Review struct {
	ID         string `bson:"id" json:"id"`
	UserID     string `bson:"userId" json:"userId"`
	UserName   string `bson:"userName" json:"userName"`
	ReviewText string `bson:"reviewText" json:"reviewText"`
	Rating     int    `bson:"rating" json:"rating"`
	CreatedAt  string `bson:"createdAt" json:"createdAt"`
}

func (p Product) AverageRating() float64 {
	if len(p.Reviews) == 0 {
		return 0
	}
	var total int
	for _, r := range p.Reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(p.Reviews))
}
