// models/project.go
package models

import "time"

const ProjectTable = "tc_projects"

// Project 来自项目登记（外部协作方）；生命周期引擎只读它的 id/name。
type Project struct {
	ID   string `gorm:"type:uuid;primaryKey" json:"id"`
	Name string `gorm:"size:200;uniqueIndex;not null" json:"name"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Project) TableName() string { return ProjectTable }
