package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tcm-clinic/internal/model"
)

type RecordService struct {
	recordRepo   RecordStore
	historyCache HistoryCache
	publisher    AuditEventPublisher
	deletePolicy DeletePolicy
	log          *zap.Logger
}

func NewRecordService(
	recordRepo RecordStore,
	historyCache HistoryCache,
	publisher AuditEventPublisher,
	deletePolicy DeletePolicy,
	log *zap.Logger,
) *RecordService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordService{
		recordRepo:   recordRepo,
		historyCache: historyCache,
		publisher:    publisher,
		deletePolicy: deletePolicy,
		log:          log,
	}
}

func (s *RecordService) Get(ctx context.Context, id uint) (*model.Record, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

// History returns all records grouped by calendar date of creation, newest
// date first; inside a group records keep created_at descending order.
func (s *RecordService) History(ctx context.Context) ([]model.RecordGroup, error) {
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	records, err := s.recordRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	groups := groupByDate(records)

	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, groups)
		}
	}
	return groups, nil
}

// Delete removes one record. The policy is evaluated before the lookup, so an
// unauthorized caller learns nothing about which ids exist.
func (s *RecordService) Delete(ctx context.Context, id uint, principal Principal) error {
	if !s.deletePolicy.CanDelete(principal, nil) {
		return ErrDeleteForbidden
	}

	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if record == nil {
		return ErrRecordNotFound
	}

	deleted, err := s.recordRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !deleted {
		return ErrRecordNotFound
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx)
		_ = s.historyCache.DeleteHistory(ctx)
	}
	s.publishAudit(ctx, record)

	return nil
}

func (s *RecordService) publishAudit(ctx context.Context, record *model.Record) {
	if s.publisher == nil {
		return
	}
	event := model.AuditEvent{
		Action:      model.AuditActionRecordDeleted,
		RecordID:    record.ID,
		PatientName: record.PatientName,
		OccurredAt:  time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("publish audit event failed",
			zap.String("action", event.Action),
			zap.Uint("record_id", record.ID),
			zap.Error(err))
	}
}

func groupByDate(records []model.Record) []model.RecordGroup {
	groups := make([]model.RecordGroup, 0)
	index := make(map[string]int)
	for _, record := range records {
		key := record.CreatedAt.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.RecordGroup{Date: key})
		}
		groups[i].Records = append(groups[i].Records, record)
	}
	return groups
}
