package db

import (
	"context"
	"testing"
	"time"

	"toolcrib-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateToolSeedsUnits(t *testing.T) {
	r := newTestRepo(t)
	tool, units := seedTool(t, r, "Rotary Hammer", "RH", 3)

	assert.Equal(t, 3, tool.DeclaredQuantity)
	assert.Equal(t, models.UnitAvailable, tool.AggregateStatus)
	require.Len(t, units, 3)
	assert.Equal(t, "RH-001", units[0].SerialNumber)
	assert.Equal(t, "RH-003", units[2].SerialNumber)

	_, err := r.CreateTool(context.Background(), CreateToolInput{Name: "", SerialPrefix: "X"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = r.CreateTool(context.Background(), CreateToolInput{Name: "X", SerialPrefix: "X", Quantity: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateToolGrowsAndTruncatesUnits(t *testing.T) {
	r := newTestRepo(t)
	tool, _ := seedTool(t, r, "Rotary Hammer", "RH", 2)

	// 扩容：续号
	qty := 4
	got, err := r.UpdateTool(context.Background(), tool.ID, UpdateToolInput{DeclaredQuantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 4, got.DeclaredQuantity)

	units, err := r.ListUnitsForTool(context.Background(), tool.ID)
	require.NoError(t, err)
	require.Len(t, units, 4)
	assert.Equal(t, "RH-004", units[3].SerialNumber)

	// 缩容：从序列号末尾截断
	qty = 1
	_, err = r.UpdateTool(context.Background(), tool.ID, UpdateToolInput{DeclaredQuantity: &qty})
	require.NoError(t, err)
	units, err = r.ListUnitsForTool(context.Background(), tool.ID)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "RH-001", units[0].SerialNumber)
}

func TestUpdateToolRefusesToTruncateBusyUnit(t *testing.T) {
	r := newTestRepo(t)
	tool, units := seedTool(t, r, "Rotary Hammer", "RH", 2)
	p := seedProject(t, r, "Site D")

	// 借走末尾那台
	mustCheckout(t, r, units[1].SerialNumber, p.ID)

	qty := 1
	_, err := r.UpdateTool(context.Background(), tool.ID, UpdateToolInput{DeclaredQuantity: &qty})
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	// 失败必须整体回滚，数量和 unit 都不动
	got, err := r.FindToolByID(context.Background(), tool.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.DeclaredQuantity)
	left, err := r.ListUnitsForTool(context.Background(), tool.ID)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestUpdateToolNameAndNotes(t *testing.T) {
	r := newTestRepo(t)
	tool, _ := seedTool(t, r, "Rotary Hammer", "RH", 1)

	name := "Rotary Hammer XL"
	notes := "chuck wobbles, watch it"
	got, err := r.UpdateTool(context.Background(), tool.ID, UpdateToolInput{Name: &name, ConditionNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	require.NotNil(t, got.ConditionNotes)
	assert.Equal(t, notes, *got.ConditionNotes)

	_, err = r.UpdateTool(context.Background(), "missing", UpdateToolInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnitDetailBySerialAndID(t *testing.T) {
	r := newTestRepo(t)
	_, units := seedTool(t, r, "Rotary Hammer", "RH", 1)
	p := seedProject(t, r, "Site D")

	a := mustCheckout(t, r, units[0].SerialNumber, p.ID)
	m, err := r.ScheduleMaintenance(context.Background(), ScheduleInput{
		UnitSerial: units[0].SerialNumber,
		Type:       models.MaintenanceInspection,
		Date:       time.Now().UTC().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	for _, key := range []string{units[0].SerialNumber, units[0].ID} {
		row, err := r.UnitDetail(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, units[0].ID, row.Unit.ID)
		require.NotNil(t, row.CurrentAssignment)
		assert.Equal(t, a.ID, row.CurrentAssignment.ID)
		assert.Equal(t, "Site D", row.CurrentAssignment.ProjectName)
		require.Len(t, row.PendingMaintenance, 1)
		assert.Equal(t, m.ID, row.PendingMaintenance[0].ID)
	}

	_, err = r.UnitDetail(context.Background(), "NOPE-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupsRejectMalformedIDs(t *testing.T) {
	// uuid 主键列不能拿任意字符串比较（postgres 会报 22P02），
	// 非 uuid 的 id 在进库前就按查不到处理
	r := newTestRepo(t)
	_, units := seedTool(t, r, "Rotary Hammer", "RH", 1)

	assert.True(t, validID(units[0].ID))
	assert.False(t, validID("RH-001"))

	_, err := r.FindToolByID(context.Background(), "RH-001")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.FindUnitByID(context.Background(), "RH-001")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.ResolveProject(context.Background(), "site-d")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Checkout(context.Background(), CheckoutInput{
		UnitSerial: units[0].SerialNumber,
		ProjectID:  "site-d",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	// 序列号不是 uuid：明细查询只比 serial_number 列
	row, err := r.UnitDetail(context.Background(), units[0].SerialNumber)
	require.NoError(t, err)
	assert.Equal(t, units[0].ID, row.Unit.ID)
}

func TestQuantityBoundedBySerialWidth(t *testing.T) {
	// 编号只有三位，超过 999 字典序就乱了，截断会删错 unit
	r := newTestRepo(t)
	_, err := r.CreateTool(context.Background(), CreateToolInput{
		Name: "Bar Clamp", SerialPrefix: "CL", Quantity: 1000,
	})
	assert.ErrorIs(t, err, ErrValidation)

	tool, _ := seedTool(t, r, "Bar Clamp", "CL", 1)
	qty := 1000
	_, err = r.UpdateTool(context.Background(), tool.ID, UpdateToolInput{DeclaredQuantity: &qty})
	assert.ErrorIs(t, err, ErrValidation)
}
