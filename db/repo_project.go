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

// --- Project registry（协作方）---
// 生命周期引擎只消费 ResolveProject；登记本身是外围 CRUD。

func (r *Repo) ResolveProject(ctx context.Context, id string) (*models.Project, error) {
	if !validID(id) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	var p models.Project
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) CreateProject(ctx context.Context, name string) (*models.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	p := &models.Project{ID: uuid.NewString(), Name: name}
	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repo) ListProjects(ctx context.Context) ([]models.Project, error) {
	var ps []models.Project
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&ps).Error
	return ps, err
}
