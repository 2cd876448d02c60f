package service

import (
	"context"
	"log/slog"

	"github.com/campuspay-ledger/internal/domain/account"
	"github.com/campuspay-ledger/internal/domain/ledger"
)

// ActivityServiceImpl implements the ActivityService interface on top of the
// archive. Dashboard reads hit the archive instead of the transaction log so
// heavy pagination never competes with tap traffic.
type ActivityServiceImpl struct {
	logger      *slog.Logger
	archiveRepo ledger.ArchiveRepository
}

// NewActivityService creates a new activity service
func NewActivityService(logger *slog.Logger, archiveRepo ledger.ArchiveRepository) ActivityService {
	return &ActivityServiceImpl{
		logger:      logger,
		archiveRepo: archiveRepo,
	}
}

// ListRecent returns a page of archived records across all cards
func (s *ActivityServiceImpl) ListRecent(ctx context.Context, page, perPage int) ([]*ledger.Record, int64, error) {
	page, perPage = normalizePage(page, perPage)
	offset := (page - 1) * perPage

	records, err := s.archiveRepo.ListRecent(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.archiveRepo.CountAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListByCardID returns a page of archived records for one card
func (s *ActivityServiceImpl) ListByCardID(ctx context.Context, cardID string, page, perPage int) ([]*ledger.Record, int64, error) {
	cardID = account.NormalizeCardID(cardID)
	page, perPage = normalizePage(page, perPage)
	offset := (page - 1) * perPage

	records, err := s.archiveRepo.ListByCardID(ctx, cardID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.archiveRepo.CountByCardID(ctx, cardID)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
