// models/tool.go
package models

import "time"

const ToolTable = "tc_tools"
const UnitTable = "tc_units"

// UnitStatus 是封闭枚举：单元与工具聚合状态共用同一组值。
// 不要用自由字符串，状态机转移表依赖这组常量。
type UnitStatus string

const (
	UnitAvailable        UnitStatus = "AVAILABLE"
	UnitNotAvailable     UnitStatus = "NOT_AVAILABLE"
	UnitUnderMaintenance UnitStatus = "UNDER_MAINTENANCE"
)

// Tool 是目录条目：一种设备型号，聚合多个实体单元。
// AggregateStatus / LastMaintenanceDate 只由对账与维保完成路径写入。
type Tool struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string     `gorm:"size:200;not null" json:"name"`
	SerialPrefix     string     `gorm:"size:60;not null" json:"serialPrefix"` // 序列号前缀，如 "DRL"
	DeclaredQuantity int        `gorm:"not null;default:0" json:"declaredQuantity"`
	AggregateStatus  UnitStatus `gorm:"size:20;not null;default:'AVAILABLE'" json:"aggregateStatus"`

	LastMaintenanceDate *time.Time `json:"lastMaintenanceDate,omitempty"`
	ConditionNotes      *string    `gorm:"type:text" json:"conditionNotes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Unit 是一件可单独追踪的实体设备，序列号唯一。
// Status 只允许 Assignment / Maintenance 两条写路径修改。
type Unit struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	ToolID       string     `gorm:"type:uuid;index;not null" json:"toolId"`
	SerialNumber string     `gorm:"size:120;uniqueIndex;not null" json:"serialNumber"`
	Status       UnitStatus `gorm:"size:20;not null;default:'AVAILABLE'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Tool) TableName() string { return ToolTable }
func (Unit) TableName() string { return UnitTable }
