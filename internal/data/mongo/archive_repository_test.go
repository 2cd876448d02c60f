package mongo

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/campuspay-ledger/internal/domain/ledger"
	"github.com/campuspay-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
)

type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Archive(ctx context.Context, record *ledger.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockArchiveRepository) ListRecent(ctx context.Context, limit, offset int) ([]*ledger.Record, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Record), args.Error(1)
}

func (m *MockArchiveRepository) ListByCardID(ctx context.Context, cardID string, limit, offset int) ([]*ledger.Record, error) {
	args := m.Called(ctx, cardID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Record), args.Error(1)
}

func (m *MockArchiveRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockArchiveRepository) CountByCardID(ctx context.Context, cardID string) (int64, error) {
	args := m.Called(ctx, cardID)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewArchiveRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewArchiveRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &ArchiveRepository{}, repo)
}

func TestArchiveRepository_Archive(t *testing.T) {
	record := &ledger.Record{
		ID:            1,
		TransactionID: uuid.New(),
		CardID:        "CARD001",
		Kind:          shared.RecordKindDebitSuccess,
		Amount:        150,
		CorrelationID: "corr-1",
		CreatedAt:     time.Now(),
	}

	tests := []struct {
		name          string
		setupMocks    func(m *MockArchiveRepository)
		expectedError error
	}{
		{
			name: "successful archive",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("Archive", mock.Anything, record).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "redelivery is accepted",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("Archive", mock.Anything, record).Return(nil).Twice()
			},
			expectedError: nil,
		},
		{
			name: "database error",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("Archive", mock.Anything, record).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockArchiveRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			err := mockRepo.Archive(ctx, record)
			if tt.name == "redelivery is accepted" {
				err = mockRepo.Archive(ctx, record)
			}

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestArchiveRepository_ListByCardID(t *testing.T) {
	cardID := "CARD001"
	records := []*ledger.Record{
		{
			ID:            2,
			TransactionID: uuid.New(),
			CardID:        cardID,
			Kind:          shared.RecordKindCredit,
			Amount:        200,
			CreatedAt:     time.Now(),
		},
		{
			ID:            1,
			TransactionID: uuid.New(),
			CardID:        cardID,
			Kind:          shared.RecordKindDebitSuccess,
			Amount:        150,
			CreatedAt:     time.Now().Add(-time.Minute),
		},
	}

	tests := []struct {
		name            string
		setupMocks      func(m *MockArchiveRepository)
		expectedRecords []*ledger.Record
		expectedError   error
	}{
		{
			name: "records found",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("ListByCardID", mock.Anything, cardID, 10, 0).Return(records, nil)
			},
			expectedRecords: records,
		},
		{
			name: "empty archive",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("ListByCardID", mock.Anything, cardID, 10, 0).Return([]*ledger.Record{}, nil)
			},
			expectedRecords: []*ledger.Record{},
		},
		{
			name: "database error",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("ListByCardID", mock.Anything, cardID, 10, 0).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockArchiveRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			result, err := mockRepo.ListByCardID(ctx, cardID, 10, 0)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedRecords, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
