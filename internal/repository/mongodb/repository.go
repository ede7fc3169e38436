package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/turnos/internal/domain/models"
)

const reportsCollection = "production_reports"

// ReportRepository archives daily production reports, one document per plant date.
type ReportRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewReportRepository connects to MongoDB and verifies the connection.
func NewReportRepository(ctx context.Context, uri, dbName string) (*ReportRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	coll := client.Database(dbName).Collection(reportsCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to index %s: %w", reportsCollection, err)
	}

	return &ReportRepository{client: client, coll: coll}, nil
}

// SaveProductionReport stores the report, replacing an earlier one for the same date.
func (r *ReportRepository) SaveProductionReport(ctx context.Context, report models.ProductionReport) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"date": report.Date},
		report,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save production report %s: %w", report.Date, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *ReportRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
