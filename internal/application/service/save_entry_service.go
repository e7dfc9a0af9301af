package service

import (
	"kvstore/internal/domain"

	"go.uber.org/zap"
)

type SaveEntryService struct {
	repository domain.EntryRepository
	logger     *zap.SugaredLogger
}

func NewSaveEntryService(repository domain.EntryRepository, logger *zap.SugaredLogger) *SaveEntryService {
	return &SaveEntryService{
		repository: repository,
		logger:     logger,
	}
}

type SaveEntryCommand struct {
	Key   string
	Value string
}

type SaveEntryResult struct {
	Entry domain.Entry
	Err   error
}

// Execute persists the entry. When Err is set nothing was applied to the
// index and no success may be reported to the caller.
func (s *SaveEntryService) Execute(command SaveEntryCommand) SaveEntryResult {
	entry, err := s.repository.Save(domain.NewEntry(command.Key, command.Value))
	if err != nil {
		s.logger.Errorw("SET failed", "key", command.Key, "error", err)
		return SaveEntryResult{Err: err}
	}
	s.logger.Infow("SET", "key", command.Key)
	return SaveEntryResult{Entry: entry}
}
