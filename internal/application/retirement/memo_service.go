package retirement

import (
	"context"

	"github.com/portal/backend/internal/domain/retirement"
	"github.com/portal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// MemoService manages the shared memo board
type MemoService struct {
	repo   retirement.MemoRepository
	logger *zap.Logger
}

// NewMemoService creates a new MemoService
func NewMemoService(repo retirement.MemoRepository, logger *zap.Logger) *MemoService {
	return &MemoService{repo: repo, logger: logger}
}

// List returns memos newest first
func (s *MemoService) List(ctx context.Context) ([]*retirement.Memo, error) {
	return s.repo.FindAll(ctx)
}

// Add validates and stores a memo
func (s *MemoService) Add(ctx context.Context, body string) (*retirement.Memo, error) {
	memo, err := retirement.NewMemo(body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, memo); err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Debug("Memo added", zap.String("memo_id", memo.ID.String()))
	return memo, nil
}
