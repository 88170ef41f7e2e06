// db/repo_tool.go
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"toolcrib-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Tool Catalog ---

// maxUnitsPerTool 由序列号的三位编号宽度决定：超过 999 之后
// <prefix>-NNN 的字典序和编号序就对不上了，截断会删错 unit。
const maxUnitsPerTool = 999

func (r *Repo) ListTools(ctx context.Context) ([]models.Tool, error) {
	var tools []models.Tool
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&tools).Error
	return tools, err
}

func (r *Repo) FindToolByID(ctx context.Context, id string) (*models.Tool, error) {
	if !validID(id) {
		return nil, fmt.Errorf("tool %s: %w", id, ErrNotFound)
	}
	var t models.Tool
	if err := r.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tool %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &t, nil
}

type CreateToolInput struct {
	Name         string
	SerialPrefix string
	Quantity     int
}

// CreateTool 建目录条目并按数量铺 unit（序列号 <prefix>-NNN，够用即可）。
func (r *Repo) CreateTool(ctx context.Context, in CreateToolInput) (*models.Tool, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.SerialPrefix) == "" {
		return nil, fmt.Errorf("name and serialPrefix are required: %w", ErrValidation)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("quantity must be >= 0: %w", ErrValidation)
	}
	if in.Quantity > maxUnitsPerTool {
		return nil, fmt.Errorf("quantity must be <= %d: %w", maxUnitsPerTool, ErrValidation)
	}

	t := &models.Tool{
		ID:               uuid.NewString(),
		Name:             in.Name,
		SerialPrefix:     in.SerialPrefix,
		DeclaredQuantity: in.Quantity,
		AggregateStatus:  models.UnitAvailable,
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		for i := 1; i <= in.Quantity; i++ {
			u := &models.Unit{
				ID:           uuid.NewString(),
				ToolID:       t.ID,
				SerialNumber: fmt.Sprintf("%s-%03d", in.SerialPrefix, i),
				Status:       models.UnitAvailable,
			}
			if err := tx.Create(u).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

type UpdateToolInput struct {
	Name             *string
	DeclaredQuantity *int
	ConditionNotes   *string
}

// UpdateTool 编辑目录条目。改数量时同步 units：
// 增加 → 按现有编号续建；减少 → 从序列号末尾截断，
// 被截断的 unit 必须是 AVAILABLE（借出中 / 维保中的不允许删）。
// declared_quantity 与 unit 数只在这里对齐，平时不做持续校验。
func (r *Repo) UpdateTool(ctx context.Context, id string, in UpdateToolInput) (*models.Tool, error) {
	if !validID(id) {
		return nil, fmt.Errorf("tool %s: %w", id, ErrNotFound)
	}
	var out *models.Tool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Tool
		if err := lockForUpdate(tx).First(&t, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("tool %s: %w", id, ErrNotFound)
			}
			return err
		}

		updates := map[string]any{}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return fmt.Errorf("name must not be empty: %w", ErrValidation)
			}
			updates["name"] = *in.Name
		}
		if in.ConditionNotes != nil {
			updates["condition_notes"] = *in.ConditionNotes
		}

		if in.DeclaredQuantity != nil {
			target := *in.DeclaredQuantity
			if target < 0 {
				return fmt.Errorf("declaredQuantity must be >= 0: %w", ErrValidation)
			}
			if target > maxUnitsPerTool {
				return fmt.Errorf("declaredQuantity must be <= %d: %w", maxUnitsPerTool, ErrValidation)
			}
			if err := syncUnits(tx, &t, target); err != nil {
				return err
			}
			updates["declared_quantity"] = target
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Tool{}).Where("id = ?", t.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.DeclaredQuantity != nil {
			if err := reconcileTool(tx, t.ID); err != nil {
				return err
			}
		}

		if err := tx.First(&t, "id = ?", t.ID).Error; err != nil {
			return err
		}
		out = &t
		return nil
	})
	return out, err
}

func syncUnits(tx *gorm.DB, t *models.Tool, target int) error {
	var units []models.Unit
	if err := tx.Where("tool_id = ?", t.ID).
		Order("serial_number ASC").
		Find(&units).Error; err != nil {
		return err
	}

	switch {
	case target > len(units):
		// 续号：从现有最大编号往后铺
		for i := len(units) + 1; i <= target; i++ {
			u := &models.Unit{
				ID:           uuid.NewString(),
				ToolID:       t.ID,
				SerialNumber: fmt.Sprintf("%s-%03d", t.SerialPrefix, i),
				Status:       models.UnitAvailable,
			}
			if err := tx.Create(u).Error; err != nil {
				return err
			}
		}
	case target < len(units):
		// 从末尾截断；占用中的 unit 拦下来
		for _, u := range units[target:] {
			if u.Status != models.UnitAvailable {
				return fmt.Errorf("unit %s is %s, cannot remove: %w", u.SerialNumber, u.Status, ErrPreconditionFailed)
			}
		}
		for _, u := range units[target:] {
			if err := tx.Delete(&models.Unit{}, "id = ?", u.ID).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// UnitDetailRow 是对外的只读明细：unit + 当前借出（若有）+ 在途维保（若有）。
type UnitDetailRow struct {
	Unit models.Unit `json:"unit"`
	Tool models.Tool `json:"tool"`

	CurrentAssignment  *AssignmentView              `json:"currentAssignment,omitempty"`
	PendingMaintenance []models.MaintenanceSchedule `json:"pendingMaintenance,omitempty"`
}

type AssignmentView struct {
	models.Assignment
	ProjectName string `json:"projectName"`
}

// UnitDetail 按内部 id 或序列号解析 unit，拼出统一明细视图。
func (r *Repo) UnitDetail(ctx context.Context, key string) (*UnitDetailRow, error) {
	dbc := r.DB.WithContext(ctx)

	// 非 uuid 的 key 只能是序列号，不能拿去和 uuid 列比较（22P02）。
	var u models.Unit
	q := dbc.Where("serial_number = ?", key)
	if validID(key) {
		q = dbc.Where("id = ? OR serial_number = ?", key, key)
	}
	if err := q.First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unit %s: %w", key, ErrNotFound)
		}
		return nil, err
	}

	var t models.Tool
	if err := dbc.First(&t, "id = ?", u.ToolID).Error; err != nil {
		return nil, err
	}

	row := &UnitDetailRow{Unit: u, Tool: t}

	// 当前 ACTIVE 借出 + 项目名（LEFT JOIN，可能为空）
	var av AssignmentView
	res := dbc.Table(models.AssignmentTable+" a").
		Select("a.*, p.name AS project_name").
		Joins("LEFT JOIN "+models.ProjectTable+" p ON p.id = a.project_id").
		Where("a.unit_id = ? AND a.status = ?", u.ID, models.AssignmentActive).
		Limit(1).
		Scan(&av)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		row.CurrentAssignment = &av
	}

	// 在途维保工单
	if err := dbc.
		Where("unit_id = ? AND status IN ?", u.ID,
			[]models.MaintenanceStatus{models.MaintenanceScheduled, models.MaintenanceInProgress}).
		Order("scheduled_date ASC").
		Find(&row.PendingMaintenance).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ToolWithUnits 目录详情页：tool + 全部 unit。
type ToolWithUnits struct {
	models.Tool
	Units []models.Unit `json:"units"`
}

func (r *Repo) ToolDetail(ctx context.Context, id string) (*ToolWithUnits, error) {
	t, err := r.FindToolByID(ctx, id)
	if err != nil {
		return nil, err
	}
	units, err := r.ListUnitsForTool(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ToolWithUnits{Tool: *t, Units: units}, nil
}
