package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"quickcart/internal/model"
	"quickcart/internal/store"
)

const (
	Name               = "quickcart_db"
	CollectionProducts = "products"
	CollectionCart     = "cart"
	CollectionOrders   = "orders"
	CollectionUsers    = "users"
	CollectionAccounts = "accounts"
)

func ConnectDB(ctx context.Context, dbURI string) (*mongo.Client, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(dbURI))
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionProducts).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	)
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionCart).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
	)
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionOrders).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "orderedAt", Value: -1},
			},
		},
	)
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionUsers).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "userID", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionAccounts).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// NewStore builds the typed store over a connected database.
func NewStore(db *mongo.Database) *store.Store {
	return &store.Store{
		Products: NewCollection[model.Product](db, CollectionProducts),
		Cart:     NewCollection[model.CartItem](db, CollectionCart),
		Orders:   NewCollection[model.Order](db, CollectionOrders),
		Users:    NewCollection[model.UserProfile](db, CollectionUsers),
	}
}
