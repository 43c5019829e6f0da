package model

import "time"

const (
	AuditActionRecordCreated = "record.created"
	AuditActionRecordDeleted = "record.deleted"
)

// AuditEvent is a best-effort trail entry for record lifecycle changes.
// Events travel through the broker and are persisted by a background worker,
// so a lost event never fails the request that produced it.
type AuditEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Action      string    `gorm:"size:32;not null;index" json:"action"`
	RecordID    uint      `gorm:"not null;index" json:"record_id"`
	PatientName string    `gorm:"size:150" json:"patient_name"`
	OccurredAt  time.Time `gorm:"not null" json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}
