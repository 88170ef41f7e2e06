package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"toolcrib-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutAndCheckinRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	tool, units := seedTool(t, r, "Hammer Drill", "DRL", 1)
	p := seedProject(t, r, "Site A")

	a, err := r.Checkout(context.Background(), CheckoutInput{
		UnitSerial:   units[0].SerialNumber,
		ProjectID:    p.ID,
		AssignedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentActive, a.Status)
	assert.Equal(t, units[0].ID, a.UnitID)

	// 借出后：unit 占位，单 unit 工具的聚合状态跟着走
	assert.Equal(t, models.UnitNotAvailable, unitStatus(t, r, units[0].ID))
	assert.Equal(t, models.UnitNotAvailable, toolAggregate(t, r, tool.ID))

	active, err := r.ListAssignments(context.Background(), units[0].ID, "", "ACTIVE")
	require.NoError(t, err)
	require.Len(t, active, 1)

	// 归还：回到借出前的状态
	back, _, err := r.Checkin(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentReturned, back.Status)
	require.NotNil(t, back.ActualReturnDate)

	assert.Equal(t, models.UnitAvailable, unitStatus(t, r, units[0].ID))
	assert.Equal(t, models.UnitAvailable, toolAggregate(t, r, tool.ID))
}

func TestCheckoutUnitNotFound(t *testing.T) {
	r := newTestRepo(t)
	p := seedProject(t, r, "Site A")

	_, err := r.Checkout(context.Background(), CheckoutInput{
		UnitSerial: "NOPE-001",
		ProjectID:  p.ID,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutProjectNotFound(t *testing.T) {
	r := newTestRepo(t)
	_, units := seedTool(t, r, "Hammer Drill", "DRL", 1)

	_, err := r.Checkout(context.Background(), CheckoutInput{
		UnitSerial: units[0].SerialNumber,
		ProjectID:  "00000000-0000-0000-0000-000000000000",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutValidation(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.Checkout(context.Background(), CheckoutInput{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckoutNotAvailableFails(t *testing.T) {
	r := newTestRepo(t)
	_, units := seedTool(t, r, "Hammer Drill", "DRL", 1)
	p := seedProject(t, r, "Site A")

	mustCheckout(t, r, units[0].SerialNumber, p.ID)

	_, err := r.Checkout(context.Background(), CheckoutInput{
		UnitSerial: units[0].SerialNumber,
		ProjectID:  p.ID,
	})
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestCheckinTwiceFailsCleanly(t *testing.T) {
	r := newTestRepo(t)
	_, units := seedTool(t, r, "Hammer Drill", "DRL", 1)
	p := seedProject(t, r, "Site A")

	a := mustCheckout(t, r, units[0].SerialNumber, p.ID)

	_, _, err := r.Checkin(context.Background(), a.ID)
	require.NoError(t, err)
	first := unitStatus(t, r, units[0].ID)

	// 超时重试的第二次归还：干净失败，状态不动
	_, _, err = r.Checkin(context.Background(), a.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Equal(t, first, unitStatus(t, r, units[0].ID))
}

func TestCheckinNotFound(t *testing.T) {
	r := newTestRepo(t)
	_, _, err := r.Checkin(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// 状态与借出记录互锁：NOT_AVAILABLE 当且仅当存在 ACTIVE 借出
func TestNotAvailableIffActiveAssignment(t *testing.T) {
	r := newTestRepo(t)
	_, units := seedTool(t, r, "Hammer Drill", "DRL", 2)
	p := seedProject(t, r, "Site A")

	a := mustCheckout(t, r, units[0].SerialNumber, p.ID)

	for _, u := range units {
		active, err := r.ListAssignments(context.Background(), u.ID, "", "ACTIVE")
		require.NoError(t, err)
		if unitStatus(t, r, u.ID) == models.UnitNotAvailable {
			assert.Len(t, active, 1)
		} else {
			assert.Empty(t, active)
		}
	}

	_, _, err := r.Checkin(context.Background(), a.ID)
	require.NoError(t, err)
	active, err := r.ListAssignments(context.Background(), units[0].ID, "", "ACTIVE")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCasUnitStatusConflict(t *testing.T) {
	r := newTestRepo(t)
	_, units := seedTool(t, r, "Hammer Drill", "DRL", 1)

	// 别人抢先改了状态，CAS 必须报冲突而不是覆盖
	require.NoError(t, setUnitStatus(r.DB, units[0].ID, models.UnitUnderMaintenance))
	err := casUnitStatus(r.DB, units[0].ID, models.UnitAvailable, models.UnitNotAvailable)
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.Equal(t, models.UnitUnderMaintenance, unitStatus(t, r, units[0].ID))
}

func TestConcurrentCheckoutSingleWinner(t *testing.T) {
	r := newTestRepo(t)
	_, units := seedTool(t, r, "Hammer Drill", "DRL", 1)
	p := seedProject(t, r, "Site A")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.Checkout(context.Background(), CheckoutInput{
				UnitSerial: units[0].SerialNumber,
				ProjectID:  p.ID,
			})
		}(i)
	}
	wg.Wait()

	var ok, failed int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		failed++
		assert.True(t,
			errors.Is(err, ErrPreconditionFailed) || errors.Is(err, ErrConcurrencyConflict),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)

	active, err := r.ListAssignments(context.Background(), units[0].ID, "", "ACTIVE")
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCheckinReturnsUnitSerial(t *testing.T) {
	r := newTestRepo(t)
	_, units := seedTool(t, r, "Impact Wrench", "IW", 1)
	p := seedProject(t, r, "Site A")
	a := mustCheckout(t, r, units[0].SerialNumber, p.ID)

	// 序列号随事务一起返回，调用方不用事后再查一遍
	_, serial, err := r.Checkin(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, units[0].SerialNumber, serial)
}
