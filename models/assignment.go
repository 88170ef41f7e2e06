// models/assignment.go
package models

import "time"

const AssignmentTable = "tc_assignments"

type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "ACTIVE"
	AssignmentReturned AssignmentStatus = "RETURNED"
)

// Assignment 是借出记录：unit 与消耗它的项目之间的绑定。
// 同一 unit 同时最多一条 ACTIVE（部分唯一索引保证，见 db.Migrate）。
type Assignment struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID    string `gorm:"type:uuid;index;not null" json:"unitId"`
	ProjectID string `gorm:"type:uuid;index;not null" json:"projectId"`

	AssignedDate       time.Time  `gorm:"index;not null" json:"assignedDate"`
	ExpectedReturnDate *time.Time `json:"expectedReturnDate,omitempty"`
	ActualReturnDate   *time.Time `gorm:"index" json:"actualReturnDate,omitempty"`

	Status AssignmentStatus `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Assignment) TableName() string { return AssignmentTable }
