// db/reconcile.go
package db

import (
	"toolcrib-backend/models"

	"gorm.io/gorm"
)

// Status Reconciliation Engine：把 Tool.aggregate_status 维持为 units 状态的摘要。
// 总在调用方的事务内执行，unit 变更和聚合更新一起提交或一起回滚。

// reconcileTool 读取该 tool 全部 unit 状态：
//   - 全部一致 → 聚合状态取该值；
//   - 状态混杂 → 保留上一次的聚合值（兼容历史行为，见 DESIGN.md）。
func reconcileTool(tx *gorm.DB, toolID string) error {
	var statuses []models.UnitStatus
	if err := tx.Model(&models.Unit{}).
		Where("tool_id = ?", toolID).
		Pluck("status", &statuses).Error; err != nil {
		return err
	}
	if len(statuses) == 0 {
		return nil
	}
	agg := statuses[0]
	for _, s := range statuses[1:] {
		if s != agg {
			return nil // mixed：不动聚合值
		}
	}
	return tx.Model(&models.Tool{}).
		Where("id = ?", toolID).
		Update("aggregate_status", agg).Error
}

// releaseUnit 按“占位方计数”决定释放后的状态：
//  1. 还有 ACTIVE 借出 → NOT_AVAILABLE；
//  2. 当前是维保占位且还有别的在途工单 → 维持 UNDER_MAINTENANCE；
//  3. 没有任何占位方 → AVAILABLE。
//
// excludeScheduleID 是正在关单的那条工单，不算占位方。
// 无条件释放会把仍被其它维保占住的 unit 错误放行，这个检查不能省。
func releaseUnit(tx *gorm.DB, unit *models.Unit, excludeScheduleID string) error {
	var activeAssignments int64
	if err := tx.Model(&models.Assignment{}).
		Where("unit_id = ? AND status = ?", unit.ID, models.AssignmentActive).
		Count(&activeAssignments).Error; err != nil {
		return err
	}
	if activeAssignments > 0 {
		return setUnitStatus(tx, unit.ID, models.UnitNotAvailable)
	}

	if unit.Status == models.UnitUnderMaintenance {
		var otherActive int64
		q := tx.Model(&models.MaintenanceSchedule{}).
			Where("unit_id = ? AND status IN ?", unit.ID,
				[]models.MaintenanceStatus{models.MaintenanceScheduled, models.MaintenanceInProgress})
		if excludeScheduleID != "" {
			q = q.Where("id <> ?", excludeScheduleID)
		}
		if err := q.Count(&otherActive).Error; err != nil {
			return err
		}
		if otherActive > 0 {
			return nil // 别的工单还占着，状态不动
		}
	}

	return setUnitStatus(tx, unit.ID, models.UnitAvailable)
}
