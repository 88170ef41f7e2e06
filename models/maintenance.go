// models/maintenance.go
package models

import "time"

const MaintenanceTable = "tc_maintenance"

type MaintenanceType string

const (
	MaintenanceRoutine    MaintenanceType = "ROUTINE"
	MaintenanceRepair     MaintenanceType = "REPAIR"
	MaintenanceInspection MaintenanceType = "INSPECTION"
)

func (t MaintenanceType) Valid() bool {
	switch t {
	case MaintenanceRoutine, MaintenanceRepair, MaintenanceInspection:
		return true
	}
	return false
}

type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "SCHEDULED"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceCancelled  MaintenanceStatus = "CANCELLED"
)

// MaintenanceSchedule 是一条计划中或进行中的维保工单。
// SCHEDULED / IN_PROGRESS 占位；COMPLETED / CANCELLED 是终态，保留作审计，不删除。
type MaintenanceSchedule struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID string `gorm:"type:uuid;index;not null" json:"unitId"`
	ToolID string `gorm:"type:uuid;index;not null" json:"toolId"`

	MaintenanceType MaintenanceType   `gorm:"size:20;not null" json:"maintenanceType"`
	ScheduledDate   time.Time         `gorm:"index;not null" json:"scheduledDate"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	Status          MaintenanceStatus `gorm:"size:20;not null;default:'SCHEDULED'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (MaintenanceSchedule) TableName() string { return MaintenanceTable }
