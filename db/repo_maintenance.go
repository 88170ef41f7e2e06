package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"toolcrib-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Maintenance Scheduler ---
// 工单状态机：SCHEDULED → IN_PROGRESS → COMPLETED；
// SCHEDULED|IN_PROGRESS → CANCELLED；终态不再转移。
// COMPLETED 允许直接从 SCHEDULED 进入（现场完成了没点开始）。

type ScheduleInput struct {
	UnitSerial string
	Type       models.MaintenanceType
	Date       time.Time
	Notes      string
}

// ScheduleMaintenance 建工单。只有 REPAIR 在创建时就占住 unit：
// Routine / Inspection 是未来的计划，不改当前状态。
func (r *Repo) ScheduleMaintenance(ctx context.Context, in ScheduleInput) (*models.MaintenanceSchedule, error) {
	if strings.TrimSpace(in.UnitSerial) == "" {
		return nil, fmt.Errorf("unitSerialNumber is required: %w", ErrValidation)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("maintenanceType %q: %w", in.Type, ErrValidation)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("scheduledDate is required: %w", ErrValidation)
	}

	var out *models.MaintenanceSchedule
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.Unit
		if err := lockForUpdate(tx).First(&u, "serial_number = ?", in.UnitSerial).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("unit %s: %w", in.UnitSerial, ErrNotFound)
			}
			return err
		}

		if in.Type == models.MaintenanceRepair {
			switch u.Status {
			case models.UnitAvailable:
				// 与 checkout 争同一个 unit，CAS 决出唯一赢家
				if err := casUnitStatus(tx, u.ID, models.UnitAvailable, models.UnitUnderMaintenance); err != nil {
					return err
				}
			case models.UnitUnderMaintenance:
				// 已有工单占位，挂第二条即可，状态不动
			default:
				// 借出中的 unit 不能拉去维修
				return fmt.Errorf("unit %s is %s: %w", u.SerialNumber, u.Status, ErrPreconditionFailed)
			}
		}

		m := &models.MaintenanceSchedule{
			ID:              uuid.NewString(),
			UnitID:          u.ID,
			ToolID:          u.ToolID,
			MaintenanceType: in.Type,
			ScheduledDate:   in.Date,
			Notes:           in.Notes,
			Status:          models.MaintenanceScheduled,
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}

		if in.Type == models.MaintenanceRepair {
			if err := reconcileTool(tx, u.ToolID); err != nil {
				return err
			}
		}
		out = m
		return nil
	})
	return out, err
}

// AdvanceMaintenanceStatus 推进工单状态。
// 关单（COMPLETED / CANCELLED）之后 unit 经 releaseUnit 走占位方计数释放：
// 还有别的在途工单占着就不放行。
// 第二个返回值是 unit 的序列号，给调用方做缓存失效用，省得事务外再查一遍。
func (r *Repo) AdvanceMaintenanceStatus(ctx context.Context, scheduleID string, newStatus models.MaintenanceStatus) (*models.MaintenanceSchedule, string, error) {
	switch newStatus {
	case models.MaintenanceInProgress, models.MaintenanceCompleted, models.MaintenanceCancelled:
	default:
		return nil, "", fmt.Errorf("newStatus %q: %w", newStatus, ErrValidation)
	}
	if !validID(scheduleID) {
		return nil, "", fmt.Errorf("schedule %s: %w", scheduleID, ErrNotFound)
	}

	var out *models.MaintenanceSchedule
	var serial string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.MaintenanceSchedule
		if err := lockForUpdate(tx).First(&m, "id = ?", scheduleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("schedule %s: %w", scheduleID, ErrNotFound)
			}
			return err
		}

		if !allowedTransition(m.Status, newStatus) {
			return fmt.Errorf("schedule %s: %s -> %s: %w", m.ID, m.Status, newStatus, ErrInvalidTransition)
		}

		if err := tx.Model(&models.MaintenanceSchedule{}).
			Where("id = ?", m.ID).
			Update("status", newStatus).Error; err != nil {
			return err
		}
		m.Status = newStatus

		u, err := findUnitForUpdate(tx, m.UnitID)
		if err != nil {
			return err
		}
		serial = u.SerialNumber

		if newStatus == models.MaintenanceCompleted || newStatus == models.MaintenanceCancelled {
			if err := releaseUnit(tx, u, m.ID); err != nil {
				return err
			}
			if newStatus == models.MaintenanceCompleted {
				today := time.Now().UTC().Truncate(24 * time.Hour)
				if err := tx.Model(&models.Tool{}).
					Where("id = ?", m.ToolID).
					Update("last_maintenance_date", today).Error; err != nil {
					return err
				}
			}
			if err := reconcileTool(tx, u.ToolID); err != nil {
				return err
			}
		}
		out = &m
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return out, serial, nil
}

// allowedTransition 是封闭转移表；终态（COMPLETED/CANCELLED）没有出边。
func allowedTransition(from, to models.MaintenanceStatus) bool {
	switch from {
	case models.MaintenanceScheduled:
		return to == models.MaintenanceInProgress ||
			to == models.MaintenanceCompleted ||
			to == models.MaintenanceCancelled
	case models.MaintenanceInProgress:
		return to == models.MaintenanceCompleted || to == models.MaintenanceCancelled
	}
	return false
}

func (r *Repo) ListMaintenance(ctx context.Context, unitID, toolID, status string) ([]models.MaintenanceSchedule, error) {
	// 非 uuid 的过滤值不可能命中 uuid 列，直接空结果
	if (unitID != "" && !validID(unitID)) || (toolID != "" && !validID(toolID)) {
		return []models.MaintenanceSchedule{}, nil
	}
	q := r.DB.WithContext(ctx).Model(&models.MaintenanceSchedule{}).Order("scheduled_date DESC")
	if unitID != "" {
		q = q.Where("unit_id = ?", unitID)
	}
	if toolID != "" {
		q = q.Where("tool_id = ?", toolID)
	}
	if status != "" {
		q = q.Where("status = ?", strings.ToUpper(status))
	}
	var ms []models.MaintenanceSchedule
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}
