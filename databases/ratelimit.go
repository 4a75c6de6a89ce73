package databases

// go generate: mockery --name RateLimitDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

const rateLimitCollectionName = "rate_limit_entries"

// RateLimitDatabase contains the methods to use with the rate limit entries database
type RateLimitDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.RateLimitEntry, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type rateLimitDatabase struct {
	db DatabaseHelper
}

// NewRateLimitDatabase initializes a new instance of rate limit database with the provided db connection
func NewRateLimitDatabase(db DatabaseHelper) RateLimitDatabase {
	return &rateLimitDatabase{
		db: db,
	}
}

func (r *rateLimitDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.RateLimitEntry, error) {
	entry := &models.RateLimitEntry{}
	err := r.db.Collection(rateLimitCollectionName).FindOne(ctx, filter, opts...).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *rateLimitDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return r.db.Collection(rateLimitCollectionName).CountDocuments(ctx, filter, opts...)
}

func (r *rateLimitDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := r.db.Collection(rateLimitCollectionName).InsertOne(ctx, document, opts...)
	return res, err
}

func (r *rateLimitDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return r.db.Collection(rateLimitCollectionName).DeleteMany(ctx, filter, opts...)
}
