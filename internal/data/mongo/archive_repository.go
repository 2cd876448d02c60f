// Package mongo provides the MongoDB implementation of the transaction
// archive. The archive is a denormalized, read-optimized copy of the
// PostgreSQL transaction log, populated asynchronously through the outbox.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuspay-ledger/internal/domain/ledger"
)

const (
	// ArchiveCollectionName is the name of the archive collection in MongoDB
	ArchiveCollectionName = "transaction_archive"
)

// ArchiveRepository implements the ledger.ArchiveRepository interface for MongoDB
type ArchiveRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewArchiveRepository creates a new MongoDB archive repository
func NewArchiveRepository(logger *slog.Logger, db *mongo.Database) ledger.ArchiveRepository {
	return &ArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// Archive upserts a record keyed by transaction ID. The outbox poller may
// deliver the same record more than once; the upsert keeps the archive
// duplicate-free without a prior read.
func (r *ArchiveRepository) Archive(ctx context.Context, record *ledger.Record) error {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"transaction_id": record.TransactionID}
	update := bson.M{"$set": record}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		r.logger.Error("Failed to archive transaction record",
			"transaction_id", record.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to archive transaction record: %w", err)
	}

	return nil
}

// ListRecent retrieves paginated archived records across all cards.
// Results are sorted by creation time in descending order (newest first).
func (r *ArchiveRepository) ListRecent(ctx context.Context, limit, offset int) ([]*ledger.Record, error) {
	return r.list(ctx, bson.M{}, limit, offset)
}

// ListByCardID retrieves paginated archived records for a single card.
// Results are sorted by creation time in descending order (newest first).
func (r *ArchiveRepository) ListByCardID(ctx context.Context, cardID string, limit, offset int) ([]*ledger.Record, error) {
	return r.list(ctx, bson.M{"card_id": cardID}, limit, offset)
}

func (r *ArchiveRepository) list(ctx context.Context, filter bson.M, limit, offset int) ([]*ledger.Record, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list archived records", "error", err)
		return nil, fmt.Errorf("failed to list archived records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*ledger.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode archived records", "error", err)
		return nil, fmt.Errorf("failed to decode archived records: %w", err)
	}

	return records, nil
}

// CountAll counts every archived record
func (r *ArchiveRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

// CountByCardID counts archived records for a single card
func (r *ArchiveRepository) CountByCardID(ctx context.Context, cardID string) (int64, error) {
	return r.count(ctx, bson.M{"card_id": cardID})
}

func (r *ArchiveRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count archived records", "error", err)
		return 0, fmt.Errorf("failed to count archived records: %w", err)
	}

	return count, nil
}
