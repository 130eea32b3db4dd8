//go:build integration

package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picker-performance-service/internal/domain"
	"github.com/wms-platform/picker-performance-service/pkg/cloudevents"
	"github.com/wms-platform/picker-performance-service/pkg/mongodb"
	pkgtesting "github.com/wms-platform/picker-performance-service/pkg/testing"
)

func setupClient(t *testing.T) *mongodb.InstrumentedClient {
	t.Helper()
	ctx := context.Background()

	container, err := pkgtesting.NewMongoDBContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close(context.Background()) })

	client, err := container.GetClient(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return mongodb.NewInstrumentedClient(mongodb.Wrap(client, "picker_performance_test"), nil, nil)
}

func TestPickerRepository(t *testing.T) {
	client := setupClient(t)
	repo := NewPickerRepository(client, cloudevents.NewEventFactory(cloudevents.SourcePickerPerformance))
	ctx := context.Background()

	john, err := domain.NewPicker("P-1", "John Smith", 100)
	require.NoError(t, err)
	require.NoError(t, john.RecordHourlyLines(9, 12))
	require.NoError(t, repo.Save(ctx, john))
	assert.Empty(t, john.GetDomainEvents())

	sarah, err := domain.NewPicker("P-2", "Sarah Johnson", 120)
	require.NoError(t, err)
	require.NoError(t, sarah.ChangeStatus(domain.PickerStatusBreak))
	require.NoError(t, repo.Save(ctx, sarah))

	t.Run("FindByID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, "P-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 12, found.Performance)
		assert.Len(t, found.HourlyData, domain.HourCount)
		assert.Equal(t, 12, found.LinesAt(9))

		missing, err := repo.FindByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("FindAll and Count", func(t *testing.T) {
		all, err := repo.FindAll(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		pageOne, err := repo.FindAll(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, pageOne, 1)
		assert.Equal(t, "P-2", pageOne[0].PickerID)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("FindByStatus", func(t *testing.T) {
		onBreak, err := repo.FindByStatus(ctx, domain.PickerStatusBreak)
		require.NoError(t, err)
		require.Len(t, onBreak, 1)
		assert.Equal(t, "P-2", onBreak[0].PickerID)
	})

	t.Run("events reach the outbox", func(t *testing.T) {
		pending, err := repo.GetOutboxRepository().FindUnpublished(ctx, 10)
		require.NoError(t, err)
		// registered + recorded for P-1, registered + status change for P-2
		assert.Len(t, pending, 4)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "P-2"))
		gone, err := repo.FindByID(ctx, "P-2")
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestSnapshotRepository(t *testing.T) {
	client := setupClient(t)
	repo := NewSnapshotRepository(client)
	ctx := context.Background()

	first, err := domain.NewDashboardSnapshot("monday", "admin", time.Now().UTC(), 3, []byte(`{"pickerCount":3}`))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	replaced, err := domain.NewDashboardSnapshot("monday", "admin", time.Now().UTC(), 4, []byte(`{"pickerCount":4}`))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, replaced))

	found, err := repo.FindByName(ctx, "monday")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 4, found.PickerCount)
	assert.JSONEq(t, `{"pickerCount":4}`, string(found.Payload))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "monday", list[0].Name)

	require.NoError(t, repo.Delete(ctx, "monday"))
	gone, err := repo.FindByName(ctx, "monday")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
