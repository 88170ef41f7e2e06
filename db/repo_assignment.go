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

// --- Assignment Manager ---

type CheckoutInput struct {
	UnitSerial         string
	ProjectID          string
	AssignedDate       time.Time
	ExpectedReturnDate *time.Time // optional
}

// Checkout 借出：单事务 = 解析项目 → 锁 unit → 校验可用 → CAS 占位 → 建借出记录 → 对账。
// 并发的借出 / 维修排期在 CAS 上分出胜负，输家拿 ErrConcurrencyConflict。
func (r *Repo) Checkout(ctx context.Context, in CheckoutInput) (*models.Assignment, error) {
	if strings.TrimSpace(in.UnitSerial) == "" || strings.TrimSpace(in.ProjectID) == "" {
		return nil, fmt.Errorf("unitSerialNumber and projectId are required: %w", ErrValidation)
	}
	if !validID(in.ProjectID) {
		return nil, fmt.Errorf("project %s: %w", in.ProjectID, ErrNotFound)
	}
	if in.AssignedDate.IsZero() {
		in.AssignedDate = time.Now().UTC()
	}

	var asg *models.Assignment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 项目必须在登记表里
		var p models.Project
		if err := tx.First(&p, "id = ?", in.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("project %s: %w", in.ProjectID, ErrNotFound)
			}
			return err
		}

		// 2) 锁定 unit
		var u models.Unit
		if err := lockForUpdate(tx).First(&u, "serial_number = ?", in.UnitSerial).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("unit %s: %w", in.UnitSerial, ErrNotFound)
			}
			return err
		}

		// 3) 前置条件：必须可用
		if u.Status != models.UnitAvailable {
			return fmt.Errorf("unit %s is %s: %w", u.SerialNumber, u.Status, ErrPreconditionFailed)
		}

		// 4) CAS 占位，防止锁不生效时被并发覆盖
		if err := casUnitStatus(tx, u.ID, models.UnitAvailable, models.UnitNotAvailable); err != nil {
			return err
		}

		// 5) 新建借出记录
		a := &models.Assignment{
			ID:                 uuid.NewString(),
			UnitID:             u.ID,
			ProjectID:          p.ID,
			AssignedDate:       in.AssignedDate,
			ExpectedReturnDate: in.ExpectedReturnDate,
			Status:             models.AssignmentActive,
		}
		if err := tx.Create(a).Error; err != nil {
			return err
		}

		// 6) 聚合对账（同一事务）
		if err := reconcileTool(tx, u.ToolID); err != nil {
			return err
		}
		asg = a
		return nil
	})
	return asg, err
}

// Checkin 归还：关闭借出记录并释放 unit。
// 重复归还（客户端超时重试）命中 ACTIVE 校验，干净地报前置条件失败，不会二次生效。
// 第二个返回值是 unit 的序列号，给调用方做缓存失效用，省得事务外再查一遍。
func (r *Repo) Checkin(ctx context.Context, assignmentID string) (*models.Assignment, string, error) {
	if !validID(assignmentID) {
		return nil, "", fmt.Errorf("assignment %s: %w", assignmentID, ErrNotFound)
	}
	var out *models.Assignment
	var serial string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Assignment
		if err := lockForUpdate(tx).First(&a, "id = ?", assignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("assignment %s: %w", assignmentID, ErrNotFound)
			}
			return err
		}
		if a.Status != models.AssignmentActive {
			return fmt.Errorf("assignment %s already %s: %w", a.ID, a.Status, ErrPreconditionFailed)
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.Assignment{}).
			Where("id = ?", a.ID).
			Updates(map[string]any{
				"status":             models.AssignmentReturned,
				"actual_return_date": now,
			}).Error; err != nil {
			return err
		}
		a.Status = models.AssignmentReturned
		a.ActualReturnDate = &now

		u, err := findUnitForUpdate(tx, a.UnitID)
		if err != nil {
			return err
		}
		if err := releaseUnit(tx, u, ""); err != nil {
			return err
		}
		if err := reconcileTool(tx, u.ToolID); err != nil {
			return err
		}
		out = &a
		serial = u.SerialNumber
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return out, serial, nil
}

func (r *Repo) ListAssignments(ctx context.Context, unitID, projectID, status string) ([]models.Assignment, error) {
	// 非 uuid 的过滤值不可能命中 uuid 列，直接空结果
	if (unitID != "" && !validID(unitID)) || (projectID != "" && !validID(projectID)) {
		return []models.Assignment{}, nil
	}
	q := r.DB.WithContext(ctx).Model(&models.Assignment{}).Order("assigned_date DESC")
	if unitID != "" {
		q = q.Where("unit_id = ?", unitID)
	}
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	if status != "" {
		q = q.Where("status = ?", strings.ToUpper(status))
	}
	var as []models.Assignment
	if err := q.Find(&as).Error; err != nil {
		return nil, err
	}
	return as, nil
}
