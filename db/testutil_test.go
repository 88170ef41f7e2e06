package db

import (
	"context"
	"testing"
	"time"

	"toolcrib-backend/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB 建一个内存库。限制单连接：database/sql 的连接池
// 会给每个 :memory: 连接各开一个库，并发测试也靠它串行化。
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(gdb))
	return gdb
}

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	return NewRepo(openTestDB(t))
}

func seedTool(t *testing.T, r *Repo, name, prefix string, qty int) (*models.Tool, []models.Unit) {
	t.Helper()
	tool, err := r.CreateTool(context.Background(), CreateToolInput{
		Name:         name,
		SerialPrefix: prefix,
		Quantity:     qty,
	})
	require.NoError(t, err)
	units, err := r.ListUnitsForTool(context.Background(), tool.ID)
	require.NoError(t, err)
	require.Len(t, units, qty)
	return tool, units
}

func seedProject(t *testing.T, r *Repo, name string) *models.Project {
	t.Helper()
	p, err := r.CreateProject(context.Background(), name)
	require.NoError(t, err)
	return p
}

func unitStatus(t *testing.T, r *Repo, unitID string) models.UnitStatus {
	t.Helper()
	u, err := r.FindUnitByID(context.Background(), unitID)
	require.NoError(t, err)
	return u.Status
}

func toolAggregate(t *testing.T, r *Repo, toolID string) models.UnitStatus {
	t.Helper()
	tool, err := r.FindToolByID(context.Background(), toolID)
	require.NoError(t, err)
	return tool.AggregateStatus
}

func mustCheckout(t *testing.T, r *Repo, serial, projectID string) *models.Assignment {
	t.Helper()
	a, err := r.Checkout(context.Background(), CheckoutInput{
		UnitSerial:   serial,
		ProjectID:    projectID,
		AssignedDate: time.Now().UTC(),
	})
	require.NoError(t, err)
	return a
}
