package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tcm-clinic/internal/ai"
	"tcm-clinic/internal/model"
)

// RecordStore is the persistence contract for records.
type RecordStore interface {
	Create(ctx context.Context, record *model.Record) error
	GetByID(ctx context.Context, id uint) (*model.Record, error)
	ListAll(ctx context.Context) ([]model.Record, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

// TextGenerator is the outbound generative-model contract.
type TextGenerator interface {
	GenerateContent(ctx context.Context, cfg ai.GenerateConfig, prompt string) (string, error)
}

// AuditEventPublisher pushes lifecycle events toward the broker. Best effort:
// callers log publish failures and move on.
type AuditEventPublisher interface {
	Publish(ctx context.Context, event model.AuditEvent) error
}

// HistoryCache caches the grouped history view.
type HistoryCache interface {
	GetHistory(ctx context.Context) ([]model.RecordGroup, bool, error)
	SetHistory(ctx context.Context, groups []model.RecordGroup) error
	DeleteHistory(ctx context.Context) error
	MarkDirty(ctx context.Context) error
	IsDirty(ctx context.Context) (bool, error)
}

// VisitInput is the validated clinician submission a report is generated from.
type VisitInput struct {
	PatientName     string
	TimeReason      string
	Symptoms        string
	TreatmentMethod string
	SessionNumber   int
	TotalSessions   int
}

type ReportService struct {
	recordRepo   RecordStore
	generator    TextGenerator
	publisher    AuditEventPublisher
	historyCache HistoryCache
	geminiCfg    ai.GenerateConfig
	genTimeout   time.Duration
	log          *zap.Logger
}

func NewReportService(
	recordRepo RecordStore,
	generator TextGenerator,
	publisher AuditEventPublisher,
	historyCache HistoryCache,
	geminiCfg ai.GenerateConfig,
	genTimeout time.Duration,
	log *zap.Logger,
) *ReportService {
	if genTimeout <= 0 {
		genTimeout = 90 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{
		recordRepo:   recordRepo,
		generator:    generator,
		publisher:    publisher,
		historyCache: historyCache,
		geminiCfg:    geminiCfg,
		genTimeout:   genTimeout,
		log:          log,
	}
}

// Generate produces a report for one visit and persists it together with the
// visit fields. The record only exists once generation has succeeded; when
// generation succeeds but the write fails, the unsaved record is returned
// alongside ErrStorage so the caller still gets the text.
func (s *ReportService) Generate(ctx context.Context, input VisitInput) (*model.Record, error) {
	input.PatientName = strings.TrimSpace(input.PatientName)
	input.TimeReason = strings.TrimSpace(input.TimeReason)
	input.Symptoms = strings.TrimSpace(input.Symptoms)
	input.TreatmentMethod = strings.TrimSpace(input.TreatmentMethod)

	if input.PatientName == "" || input.TimeReason == "" || input.Symptoms == "" || input.TreatmentMethod == "" {
		return nil, fmt.Errorf("%w: all visit fields are required", ErrInvalidInput)
	}
	if input.SessionNumber <= 0 || input.TotalSessions <= 0 {
		return nil, fmt.Errorf("%w: session numbers must be positive", ErrInvalidInput)
	}

	input.PatientName = cases.Title(language.English).String(input.PatientName)
	prompt := buildPrompt(input, time.Now())

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	reportText, err := s.generator.GenerateContent(genCtx, s.geminiCfg, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	reportText = strings.TrimSpace(reportText)
	if reportText == "" {
		return nil, fmt.Errorf("%w: model returned empty text", ErrGeneration)
	}

	record := &model.Record{
		PatientName: input.PatientName,
		Symptoms:    input.Symptoms,
		Treatment:   input.TreatmentMethod,
		AIReport:    reportText,
	}
	if err := s.recordRepo.Create(ctx, record); err != nil {
		// The generated text survives in the returned record even though
		// nothing was persisted.
		return record, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx)
		_ = s.historyCache.DeleteHistory(ctx)
	}
	s.publishAudit(ctx, model.AuditActionRecordCreated, record)

	return record, nil
}

func (s *ReportService) publishAudit(ctx context.Context, action string, record *model.Record) {
	if s.publisher == nil {
		return
	}
	event := model.AuditEvent{
		Action:      action,
		RecordID:    record.ID,
		PatientName: record.PatientName,
		OccurredAt:  time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("publish audit event failed",
			zap.String("action", action),
			zap.Uint("record_id", record.ID),
			zap.Error(err))
	}
}

func buildPrompt(input VisitInput, now time.Time) string {
	var b strings.Builder
	b.WriteString("You are a medical assistant at a Traditional Chinese Medicine (TCM) clinic. ")
	b.WriteString("Write a concise, professional consultation report in plain prose for the visit below. ")
	b.WriteString("Summarize the presenting symptoms, describe the treatment performed this session, ")
	b.WriteString("and note the progress within the planned course of treatment.\n\n")
	fmt.Fprintf(&b, "**Patient Name:** %s\n", input.PatientName)
	fmt.Fprintf(&b, "**Time and Reason for Visit:** %s\n", input.TimeReason)
	fmt.Fprintf(&b, "**Symptoms:** %s\n", input.Symptoms)
	fmt.Fprintf(&b, "**Treatment This Session:** %s\n", input.TreatmentMethod)
	fmt.Fprintf(&b, "**Session:** %d / %d\n", input.SessionNumber, input.TotalSessions)
	fmt.Fprintf(&b, "**Date of Consultation:** %s\n", now.Format("January 2, 2006"))
	return b.String()
}
