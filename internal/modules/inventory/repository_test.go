package inventory_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapjoy/matchd/internal/modules/inventory"
	testhelpers "github.com/swapjoy/matchd/internal/testing"
)

func newTestRepo(t *testing.T) (*inventory.Repository, func()) {
	t.Helper()
	db, cleanup := testhelpers.NewTestDB(t, "marketplace")
	return inventory.NewRepository(db.Conn(), zerolog.Nop()), cleanup
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	item := &inventory.Item{
		UserID:   "user-1",
		Title:    "Mountain bike",
		Price:    350,
		Currency: "USD",
	}
	require.NoError(t, repo.Create(item))
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, inventory.StatusActive, item.Status)

	got, err := repo.GetByID(item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Mountain bike", got.Title)
	assert.InDelta(t, 350.0, got.Price, 1e-9)
	assert.Equal(t, "USD", got.Currency)
}

func TestRepositoryGetMissingReturnsNil(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	got, err := repo.GetByID("no-such-item")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepositoryUpdate(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	item := &inventory.Item{UserID: "user-1", Title: "Guitar", Price: 200, Currency: "USD"}
	require.NoError(t, repo.Create(item))

	item.Price = 180
	item.Status = inventory.StatusSwapped
	require.NoError(t, repo.Update(item))

	got, err := repo.GetByID(item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 180.0, got.Price, 1e-9)
	assert.Equal(t, inventory.StatusSwapped, got.Status)
}

func TestRepositoryUpdateMissing(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	err := repo.Update(&inventory.Item{ID: "ghost", Title: "x", Currency: "USD"})
	assert.Error(t, err)
}

func TestRepositoryDelete(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	item := &inventory.Item{UserID: "user-1", Title: "Lamp", Price: 25, Currency: "USD"}
	require.NoError(t, repo.Create(item))
	require.NoError(t, repo.Delete(item.ID))

	got, err := repo.GetByID(item.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, repo.Delete(item.ID))
}

func TestRepositoryListActiveExcludingUser(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(&inventory.Item{UserID: "alice", Title: "Desk", Price: 90, Currency: "USD"}))
	require.NoError(t, repo.Create(&inventory.Item{UserID: "bob", Title: "Chair", Price: 45, Currency: "USD"}))
	require.NoError(t, repo.Create(&inventory.Item{UserID: "bob", Title: "Old chair", Price: 10, Currency: "USD", Status: inventory.StatusArchived}))

	items, err := repo.ListActiveExcludingUser("alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Chair", items[0].Title)

	all, err := repo.ListActive()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := repo.CountActive()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRepositoryListByUser(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(&inventory.Item{UserID: "alice", Title: "Desk", Price: 90, Currency: "USD"}))
	require.NoError(t, repo.Create(&inventory.Item{UserID: "alice", Title: "Rug", Price: 30, Currency: "USD", Status: inventory.StatusArchived}))

	items, err := repo.ListByUser("alice")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRepositoryListActiveByUser(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(&inventory.Item{UserID: "alice", Title: "Desk", Price: 90, Currency: "USD"}))
	require.NoError(t, repo.Create(&inventory.Item{UserID: "alice", Title: "Rug", Price: 30, Currency: "USD", Status: inventory.StatusArchived}))
	require.NoError(t, repo.Create(&inventory.Item{UserID: "bob", Title: "Chair", Price: 45, Currency: "USD"}))

	items, err := repo.ListActiveByUser("alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Desk", items[0].Title)
}

func TestEffectivePriceFallsBackToEstimate(t *testing.T) {
	estimate := 120.0

	item := &inventory.Item{Price: 0, EstimatedValue: &estimate}
	assert.InDelta(t, 120.0, item.EffectivePrice(), 1e-9)

	item.Price = 100
	assert.InDelta(t, 100.0, item.EffectivePrice(), 1e-9)

	empty := &inventory.Item{}
	assert.Zero(t, empty.EffectivePrice())
}
