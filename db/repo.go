package db

import (
	"context"
	"errors"
	"fmt"

	"toolcrib-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// validID 过滤非 uuid 的主键。postgres 的 uuid 列没法和 "IW-001"
// 这类字符串比较（22P02），不挡一下整条查询会报错而不是查不到。
func validID(id string) bool { return uuid.Validate(id) == nil }

// lockForUpdate 给查询加行锁（SELECT ... FOR UPDATE）。
// sqlite（测试用）不支持 FOR UPDATE，事务本身已串行化，直接跳过。
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// --- Unit Registry ---
// units 表是其余组件的总账：状态只经 setUnitStatus / casUnitStatus 写入，
// 前置条件由调用方（Assignment / Maintenance）负责校验。

func (r *Repo) FindUnitByID(ctx context.Context, id string) (*models.Unit, error) {
	if !validID(id) {
		return nil, fmt.Errorf("unit %s: %w", id, ErrNotFound)
	}
	var u models.Unit
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unit %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUnitBySerial(ctx context.Context, serial string) (*models.Unit, error) {
	var u models.Unit
	if err := r.DB.WithContext(ctx).First(&u, "serial_number = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unit %s: %w", serial, ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) ListUnitsForTool(ctx context.Context, toolID string) ([]models.Unit, error) {
	var units []models.Unit
	err := r.DB.WithContext(ctx).
		Where("tool_id = ?", toolID).
		Order("serial_number ASC").
		Find(&units).Error
	return units, err
}

// setUnitStatus 无条件写状态，仅供包内两条写路径使用。
func setUnitStatus(tx *gorm.DB, unitID string, status models.UnitStatus) error {
	return tx.Model(&models.Unit{}).
		Where("id = ?", unitID).
		Update("status", status).Error
}

// casUnitStatus 条件写：UPDATE ... WHERE status = from。
// 没改到行说明有并发操作抢先改了状态，按冲突报给调用方。
func casUnitStatus(tx *gorm.DB, unitID string, from, to models.UnitStatus) error {
	res := tx.Model(&models.Unit{}).
		Where("id = ? AND status = ?", unitID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("unit %s no longer %s: %w", unitID, from, ErrConcurrencyConflict)
	}
	return nil
}

// findUnitForUpdate 在事务内锁定并读取 unit，作为每次变更的入口。
func findUnitForUpdate(tx *gorm.DB, unitID string) (*models.Unit, error) {
	var u models.Unit
	if err := lockForUpdate(tx).First(&u, "id = ?", unitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unit %s: %w", unitID, ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}
