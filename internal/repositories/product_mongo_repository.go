package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"katalog/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductCollection is the name of the MongoDB collection holding products.
const ProductCollection = "products"

// MongoProductRepository is a MongoDB implementation of ProductRepository.
// Identifiers are ObjectID hex strings generated on insert. Documents whose
// _id is a native ObjectID are matched by the same hex string.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a repository over the given collection.
func NewMongoProductRepository(coll *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{coll: coll}
}

// ConnectMongo opens a client, verifies it with a ping and returns it.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// GetAll retrieves all products in insertion order.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOne(ctx, idFilter(id)).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product document.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update sets the mutable fields of the stored document. _id and createdAt
// are left untouched.
func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"title":       product.Title,
		"description": product.Description,
		"status":      product.Status,
		"date":        product.Date,
		"image":       product.Image,
		"updatedAt":   product.UpdatedAt,
	}
	res, err := r.coll.UpdateOne(ctx, idFilter(product.ID), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product with ID %s for update: %w", product.ID, ErrProductNotFound)
	}
	return nil
}

// Delete removes a product with FindOneAndDelete and returns the removed document.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOneAndDelete(ctx, idFilter(id)).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s for deletion: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	return &product, nil
}

// idFilter matches id stored either as a string or as the ObjectID it encodes.
func idFilter(id string) bson.M {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bson.M{"_id": id}
	}
	return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
}
