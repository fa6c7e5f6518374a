package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paykit/pkg/plan"
)

func TestNewCatalog_Validation(t *testing.T) {
	t.Parallel()

	t.Run("accepts default plans", func(t *testing.T) {
		t.Parallel()
		c, err := plan.NewCatalog(plan.DefaultPlans())
		require.NoError(t, err)
		assert.Len(t, c.IDs(), 3)
	})

	t.Run("rejects empty plan list", func(t *testing.T) {
		t.Parallel()
		_, err := plan.NewCatalog(nil)
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})

	t.Run("rejects unknown plan ID", func(t *testing.T) {
		t.Parallel()
		_, err := plan.NewCatalog([]plan.Plan{
			{ID: "weekly", Price: plan.Money{Amount: 100, Currency: "USD"}, DurationMonths: 1},
		})
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})

	t.Run("rejects duration mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := plan.NewCatalog([]plan.Plan{
			{ID: plan.Monthly, Price: plan.Money{Amount: 100, Currency: "USD"}, DurationMonths: 3},
		})
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		t.Parallel()
		_, err := plan.NewCatalog([]plan.Plan{
			{ID: plan.Monthly, Price: plan.Money{Amount: 0, Currency: "USD"}, DurationMonths: 1},
		})
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})

	t.Run("rejects duplicate plan", func(t *testing.T) {
		t.Parallel()
		_, err := plan.NewCatalog([]plan.Plan{
			{ID: plan.Monthly, Price: plan.Money{Amount: 100, Currency: "USD"}, DurationMonths: 1},
			{ID: plan.Monthly, Price: plan.Money{Amount: 200, Currency: "USD"}, DurationMonths: 1},
		})
		assert.ErrorIs(t, err, plan.ErrInvalidConfiguration)
	})
}

func TestCatalog_Resolve(t *testing.T) {
	t.Parallel()

	catalog := plan.MustNewCatalog(plan.DefaultPlans())

	t.Run("resolves known plan", func(t *testing.T) {
		t.Parallel()
		p, err := catalog.Resolve(plan.Quarterly)
		require.NoError(t, err)
		assert.Equal(t, plan.Quarterly, p.ID)
		assert.Equal(t, 3, p.DurationMonths)
		assert.Equal(t, int64(2499), p.Price.Amount)
	})

	t.Run("rejects unknown plan before any network call", func(t *testing.T) {
		t.Parallel()
		_, err := catalog.Resolve("lifetime'; DROP TABLE plans;--")
		assert.ErrorIs(t, err, plan.ErrUnknownPlan)
	})
}
