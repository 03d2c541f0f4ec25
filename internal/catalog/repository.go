package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Repository defines the catalog read surface. Consumers define this
// interface, not the MongoDB implementation.
type Repository interface {
	GetAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

// productDoc is the persisted shape; prices are stored as floats and lifted
// into decimals at the boundary.
type productDoc struct {
	ID            int64     `bson:"_id"`
	Name          string    `bson:"name"`
	Slug          string    `bson:"slug"`
	Description   string    `bson:"description"`
	Price         float64   `bson:"price"`
	OriginalPrice float64   `bson:"original_price"`
	ImageURL      string    `bson:"image_url"`
	Colors        []string  `bson:"colors"`
	Handles       []string  `bson:"handles"`
	InStock       bool      `bson:"in_stock"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d productDoc) product() domain.Product {
	return domain.Product{
		ID:            d.ID,
		Name:          d.Name,
		Slug:          d.Slug,
		Description:   d.Description,
		Price:         decimal.NewFromFloat(d.Price),
		OriginalPrice: decimal.NewFromFloat(d.OriginalPrice),
		ImageURL:      d.ImageURL,
		Colors:        d.Colors,
		Handles:       d.Handles,
		InStock:       d.InStock,
		CreatedAt:     d.CreatedAt,
	}
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("products")}
}

func (m *mongoRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	cursor, err := m.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]domain.Product, len(docs))
	for i, d := range docs {
		products[i] = d.product()
	}
	return products, nil
}

func (m *mongoRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *mongoRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return m.findOne(ctx, bson.M{"slug": slug})
}

func (m *mongoRepository) findOne(ctx context.Context, filter bson.M) (*domain.Product, error) {
	var doc productDoc
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	p := doc.product()
	return &p, nil
}

// ConnectMongoDB opens the catalog database with the usual pool bounds.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
