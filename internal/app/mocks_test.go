package app

import (
	"context"
	"errors"
	"sync/atomic"

	"tcm-clinic/internal/ai"
	"tcm-clinic/internal/model"
)

// Compile-time checks that the mocks satisfy the service contracts.
var (
	_ RecordStore         = (*MockRecordStore)(nil)
	_ TextGenerator       = (*MockTextGenerator)(nil)
	_ AuditEventPublisher = (*MockAuditPublisher)(nil)
	_ HistoryCache        = (*MockHistoryCache)(nil)
)

type MockRecordStore struct {
	CreateFunc  func(ctx context.Context, record *model.Record) error
	GetByIDFunc func(ctx context.Context, id uint) (*model.Record, error)
	ListAllFunc func(ctx context.Context) ([]model.Record, error)
	DeleteFunc  func(ctx context.Context, id uint) (bool, error)

	CreateCalls int32
	DeleteCalls int32
}

func (m *MockRecordStore) Create(ctx context.Context, record *model.Record) error {
	atomic.AddInt32(&m.CreateCalls, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	record.ID = 1
	return nil
}

func (m *MockRecordStore) GetByID(ctx context.Context, id uint) (*model.Record, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not implemented in mock")
}

func (m *MockRecordStore) ListAll(ctx context.Context) ([]model.Record, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, errors.New("ListAllFunc not implemented in mock")
}

func (m *MockRecordStore) Delete(ctx context.Context, id uint) (bool, error) {
	atomic.AddInt32(&m.DeleteCalls, 1)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return true, nil
}

type MockTextGenerator struct {
	GenerateContentFunc func(ctx context.Context, cfg ai.GenerateConfig, prompt string) (string, error)

	LastPrompt string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, cfg ai.GenerateConfig, prompt string) (string, error) {
	m.LastPrompt = prompt
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, cfg, prompt)
	}
	return "generated report", nil
}

type MockAuditPublisher struct {
	PublishFunc func(ctx context.Context, event model.AuditEvent) error

	PublishCalls int32
	LastEvent    model.AuditEvent
}

func (m *MockAuditPublisher) Publish(ctx context.Context, event model.AuditEvent) error {
	atomic.AddInt32(&m.PublishCalls, 1)
	m.LastEvent = event
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	return nil
}

type MockHistoryCache struct {
	GetHistoryFunc func(ctx context.Context) ([]model.RecordGroup, bool, error)
	IsDirtyFunc    func(ctx context.Context) (bool, error)

	SetHistoryCalls    int32
	DeleteHistoryCalls int32
	MarkDirtyCalls     int32
	LastSetGroups      []model.RecordGroup
}

func (m *MockHistoryCache) GetHistory(ctx context.Context) ([]model.RecordGroup, bool, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx)
	}
	return nil, false, nil
}

func (m *MockHistoryCache) SetHistory(ctx context.Context, groups []model.RecordGroup) error {
	atomic.AddInt32(&m.SetHistoryCalls, 1)
	m.LastSetGroups = groups
	return nil
}

func (m *MockHistoryCache) DeleteHistory(ctx context.Context) error {
	atomic.AddInt32(&m.DeleteHistoryCalls, 1)
	return nil
}

func (m *MockHistoryCache) MarkDirty(ctx context.Context) error {
	atomic.AddInt32(&m.MarkDirtyCalls, 1)
	return nil
}

func (m *MockHistoryCache) IsDirty(ctx context.Context) (bool, error) {
	if m.IsDirtyFunc != nil {
		return m.IsDirtyFunc(ctx)
	}
	return false, nil
}
