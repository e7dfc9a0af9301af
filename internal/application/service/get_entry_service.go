package service

import (
	"kvstore/internal/domain"

	"go.uber.org/zap"
)

type GetEntryService struct {
	repository domain.EntryRepository
	logger     *zap.SugaredLogger
}

func NewGetEntryService(repository domain.EntryRepository, logger *zap.SugaredLogger) *GetEntryService {
	return &GetEntryService{
		repository: repository,
		logger:     logger,
	}
}

type GetEntryQuery struct {
	Key string
}

type GetEntryResult struct {
	Entry domain.Entry
	Found bool
	Err   error
}

func (s *GetEntryService) Execute(query GetEntryQuery) GetEntryResult {
	entry, found, err := s.repository.Get(query.Key)
	if err != nil {
		s.logger.Errorw("GET failed", "key", query.Key, "error", err)
		return GetEntryResult{Err: err}
	}
	if !found {
		s.logger.Infow("GET miss", "key", query.Key)
		return GetEntryResult{Found: false}
	}
	s.logger.Infow("GET hit", "key", query.Key)
	return GetEntryResult{
		Entry: entry,
		Found: true,
	}
}
