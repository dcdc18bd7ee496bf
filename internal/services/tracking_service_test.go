package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"print_shop/internal/models"
)

type fakeCache struct {
	mu      sync.Mutex
	views   map[string]TrackingView
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{views: make(map[string]TrackingView)}
}

func (c *fakeCache) GetTrackingView(_ context.Context, code string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	view, ok := c.views[code]
	if !ok {
		return models.ErrNotFound
	}
	*dest.(*TrackingView) = view
	return nil
}

func (c *fakeCache) SetTrackingView(_ context.Context, code string, view interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[code] = *view.(*TrackingView)
	c.sets++
	return nil
}

func (c *fakeCache) DeleteTrackingView(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, code)
	c.deletes++
	return nil
}

func trackingFixture(t *testing.T) (*fakeOrderRepo, TrackingService) {
	t.Helper()
	orders := newFakeOrderRepo()
	return orders, NewTrackingService(orders, nil, time.Minute)
}

func seedOrder(t *testing.T, orders *fakeOrderRepo, mutate func(*models.Order)) *models.Order {
	t.Helper()
	order := &models.Order{
		TrackingCode: "PH-TEST0" + string(rune('A'+orders.nextID)),
		ClientName:   "Maria",
		Status:       string(models.OrderPending),
		Items: []models.OrderItem{
			{ProductName: "Dragon", Quantity: 2, UnitPrice: 100},
		},
		Total:    200,
		TenantID: testTenant,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, orders.Create(order))
	return order
}

func TestProgressAlongCanonicalPath(t *testing.T) {
	orders, svc := trackingFixture(t)
	now := time.Now()

	cases := []struct {
		status   models.OrderStatus
		mutate   func(*models.Order)
		progress int
	}{
		{models.OrderPending, nil, 0},
		{models.OrderInProgress, func(o *models.Order) { o.StartedAt = &now }, 33},
		{models.OrderCompleted, func(o *models.Order) { o.StartedAt = &now; o.FinishedAt = &now }, 67},
		{models.OrderDelivered, func(o *models.Order) { o.StartedAt = &now; o.FinishedAt = &now }, 100},
	}

	previous := -1
	for _, tc := range cases {
		order := seedOrder(t, orders, func(o *models.Order) {
			o.Status = string(tc.status)
			if tc.mutate != nil {
				tc.mutate(o)
			}
		})

		view, err := svc.GetByTrackingCode(context.Background(), order.TrackingCode)
		require.NoError(t, err)
		assert.Equal(t, tc.progress, view.Progress, "status %s", tc.status)
		assert.Greater(t, view.Progress, previous, "progress must be non-decreasing along the path")
		previous = view.Progress
	}
}

func TestProgressForCancelledUsesLastKnownStep(t *testing.T) {
	orders, svc := trackingFixture(t)
	now := time.Now()

	cancelledEarly := seedOrder(t, orders, func(o *models.Order) {
		o.Status = string(models.OrderCancelled)
	})
	cancelledMidPrint := seedOrder(t, orders, func(o *models.Order) {
		o.Status = string(models.OrderCancelled)
		o.StartedAt = &now
	})

	view, err := svc.GetByTrackingCode(context.Background(), cancelledEarly.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Progress)

	view, err = svc.GetByTrackingCode(context.Background(), cancelledMidPrint.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, 33, view.Progress)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	orders, svc := trackingFixture(t)
	order := seedOrder(t, orders, nil)

	view, err := svc.GetByTrackingCode(context.Background(), strings.ToLower(order.TrackingCode))
	require.NoError(t, err)
	assert.Equal(t, order.TrackingCode, view.TrackingCode)

	_, err = svc.GetByTrackingCode(context.Background(), "PH-NOPE99")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTrackingViewOmitsInternals(t *testing.T) {
	orders, svc := trackingFixture(t)
	order := seedOrder(t, orders, nil)

	view, err := svc.GetByTrackingCode(context.Background(), order.TrackingCode)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, "Dragon", view.Items[0].ProductName)
	assert.Equal(t, 2, view.Items[0].Quantity)
	// The projection carries no ids and no money fields by construction;
	// make sure the item view stays that narrow.
	assert.IsType(t, TrackedItem{}, view.Items[0])
}

func TestSubmitFeedbackValidation(t *testing.T) {
	orders, svc := trackingFixture(t)
	order := seedOrder(t, orders, func(o *models.Order) {
		o.Status = string(models.OrderDelivered)
	})
	ctx := context.Background()

	assert.True(t, models.IsValidationError(svc.SubmitFeedback(ctx, order.TrackingCode, 0, "")))
	assert.True(t, models.IsValidationError(svc.SubmitFeedback(ctx, order.TrackingCode, 6, "")))
}

func TestSubmitFeedbackRequiresDelivery(t *testing.T) {
	orders, svc := trackingFixture(t)
	order := seedOrder(t, orders, func(o *models.Order) {
		o.Status = string(models.OrderInProgress)
	})

	err := svc.SubmitFeedback(context.Background(), order.TrackingCode, 5, "great")
	assert.ErrorIs(t, err, models.ErrNotDelivered)

	reloaded, err := orders.GetByID(testTenant, order.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CustomerSatisfaction, "rejected feedback must not be stored")
}

func TestSubmitFeedbackLastWriteWins(t *testing.T) {
	orders, svc := trackingFixture(t)
	order := seedOrder(t, orders, func(o *models.Order) {
		o.Status = string(models.OrderDelivered)
	})
	ctx := context.Background()

	require.NoError(t, svc.SubmitFeedback(ctx, order.TrackingCode, 3, "ok"))
	require.NoError(t, svc.SubmitFeedback(ctx, order.TrackingCode, 5, "actually great"))

	reloaded, err := orders.GetByID(testTenant, order.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CustomerSatisfaction)
	assert.Equal(t, 5, *reloaded.CustomerSatisfaction)
	assert.Equal(t, "actually great", reloaded.CustomerFeedback)
}

func TestTrackingCacheReadThroughAndInvalidation(t *testing.T) {
	orders := newFakeOrderRepo()
	cache := newFakeCache()
	svc := NewTrackingService(orders, cache, time.Minute)
	ctx := context.Background()

	order := seedOrder(t, orders, func(o *models.Order) {
		o.Status = string(models.OrderDelivered)
	})

	_, err := svc.GetByTrackingCode(ctx, order.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Second lookup is served from the cache.
	_, err = svc.GetByTrackingCode(ctx, order.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	require.NoError(t, svc.SubmitFeedback(ctx, order.TrackingCode, 4, "nice"))
	assert.Equal(t, 1, cache.deletes, "feedback must invalidate the cached view")
}
