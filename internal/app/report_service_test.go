package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tcm-clinic/internal/ai"
	"tcm-clinic/internal/model"
)

func validVisitInput() VisitInput {
	return VisitInput{
		PatientName:     "john doe",
		TimeReason:      "Monday morning, lower back pain",
		Symptoms:        "Dull lumbar ache, worse after sitting",
		TreatmentMethod: "Acupuncture and cupping",
		SessionNumber:   2,
		TotalSessions:   6,
	}
}

func newReportService(store *MockRecordStore, gen *MockTextGenerator, pub *MockAuditPublisher, cache *MockHistoryCache) *ReportService {
	return NewReportService(store, gen, pub, cache, ai.GenerateConfig{Model: "test-model"}, time.Second, nil)
}

func TestGenerateTitleCasesPatientNameBeforeStorage(t *testing.T) {
	store := &MockRecordStore{}
	gen := &MockTextGenerator{}
	svc := newReportService(store, gen, &MockAuditPublisher{}, &MockHistoryCache{})

	record, err := svc.Generate(context.Background(), validVisitInput())
	assert.NoError(t, err)
	assert.Equal(t, "John Doe", record.PatientName)
	assert.Contains(t, gen.LastPrompt, "**Patient Name:** John Doe")
}

func TestGenerateTrimsModelOutput(t *testing.T) {
	store := &MockRecordStore{}
	gen := &MockTextGenerator{
		GenerateContentFunc: func(ctx context.Context, cfg ai.GenerateConfig, prompt string) (string, error) {
			return "\n  report body  \n\n", nil
		},
	}
	svc := newReportService(store, gen, &MockAuditPublisher{}, &MockHistoryCache{})

	record, err := svc.Generate(context.Background(), validVisitInput())
	assert.NoError(t, err)
	assert.Equal(t, "report body", record.AIReport)
}

func TestGenerateRejectsMissingFields(t *testing.T) {
	store := &MockRecordStore{}
	svc := newReportService(store, &MockTextGenerator{}, &MockAuditPublisher{}, &MockHistoryCache{})

	cases := []func(*VisitInput){
		func(in *VisitInput) { in.PatientName = "   " },
		func(in *VisitInput) { in.Symptoms = "" },
		func(in *VisitInput) { in.TreatmentMethod = "" },
		func(in *VisitInput) { in.TimeReason = "" },
		func(in *VisitInput) { in.SessionNumber = 0 },
		func(in *VisitInput) { in.TotalSessions = -3 },
	}
	for _, mutate := range cases {
		input := validVisitInput()
		mutate(&input)
		_, err := svc.Generate(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.EqualValues(t, 0, store.CreateCalls)
}

func TestGenerateFailureSkipsPersistence(t *testing.T) {
	store := &MockRecordStore{}
	gen := &MockTextGenerator{
		GenerateContentFunc: func(ctx context.Context, cfg ai.GenerateConfig, prompt string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	svc := newReportService(store, gen, &MockAuditPublisher{}, &MockHistoryCache{})

	record, err := svc.Generate(context.Background(), validVisitInput())
	assert.Nil(t, record)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.EqualValues(t, 0, store.CreateCalls)
}

func TestGenerateStorageFailureStillReturnsText(t *testing.T) {
	store := &MockRecordStore{
		CreateFunc: func(ctx context.Context, record *model.Record) error {
			return errors.New("connection refused")
		},
	}
	pub := &MockAuditPublisher{}
	cache := &MockHistoryCache{}
	svc := newReportService(store, &MockTextGenerator{}, pub, cache)

	record, err := svc.Generate(context.Background(), validVisitInput())
	assert.ErrorIs(t, err, ErrStorage)
	if assert.NotNil(t, record) {
		assert.Equal(t, "generated report", record.AIReport)
	}
	assert.EqualValues(t, 0, pub.PublishCalls)
	assert.EqualValues(t, 0, cache.DeleteHistoryCalls)
}

func TestGenerateSuccessInvalidatesCacheAndPublishesAudit(t *testing.T) {
	store := &MockRecordStore{
		CreateFunc: func(ctx context.Context, record *model.Record) error {
			record.ID = 42
			record.CreatedAt = time.Now()
			return nil
		},
	}
	pub := &MockAuditPublisher{}
	cache := &MockHistoryCache{}
	svc := newReportService(store, &MockTextGenerator{}, pub, cache)

	record, err := svc.Generate(context.Background(), validVisitInput())
	assert.NoError(t, err)
	assert.EqualValues(t, 1, cache.MarkDirtyCalls)
	assert.EqualValues(t, 1, cache.DeleteHistoryCalls)
	assert.EqualValues(t, 1, pub.PublishCalls)
	assert.Equal(t, model.AuditActionRecordCreated, pub.LastEvent.Action)
	assert.Equal(t, record.ID, pub.LastEvent.RecordID)
}

func TestGenerateAuditPublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &MockAuditPublisher{
		PublishFunc: func(ctx context.Context, event model.AuditEvent) error {
			return errors.New("broker unavailable")
		},
	}
	svc := newReportService(&MockRecordStore{}, &MockTextGenerator{}, pub, &MockHistoryCache{})

	_, err := svc.Generate(context.Background(), validVisitInput())
	assert.NoError(t, err)
}

func TestBuildPromptContainsAllFieldsAndDate(t *testing.T) {
	input := validVisitInput()
	input.PatientName = "John Doe"
	now := time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)

	prompt := buildPrompt(input, now)
	assert.Contains(t, prompt, "**Patient Name:** John Doe")
	assert.Contains(t, prompt, "**Time and Reason for Visit:** Monday morning, lower back pain")
	assert.Contains(t, prompt, "**Symptoms:** Dull lumbar ache, worse after sitting")
	assert.Contains(t, prompt, "**Treatment This Session:** Acupuncture and cupping")
	assert.Contains(t, prompt, "**Session:** 2 / 6")
	assert.Contains(t, prompt, "**Date of Consultation:** March 5, 2024")
	assert.True(t, strings.HasPrefix(prompt, "You are a medical assistant"))
}
