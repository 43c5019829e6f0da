package model

import "time"

// Record is one persisted clinical visit plus its generated report. Records
// are written once and never updated; the only lifecycle transitions are
// create and delete.
type Record struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	PatientName string    `gorm:"size:150;not null" json:"patient_name"`
	Symptoms    string    `gorm:"type:text;not null" json:"symptoms"`
	Treatment   string    `gorm:"type:text;not null" json:"treatment"`
	AIReport    string    `gorm:"type:text;not null" json:"ai_report"`
}

// RecordGroup is one calendar day of the history view. Date is the YYYY-MM-DD
// of the records' creation timestamps; records keep created_at descending
// order inside the group.
type RecordGroup struct {
	Date    string   `json:"date"`
	Records []Record `json:"records"`
}
