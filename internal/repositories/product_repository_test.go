package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteRepo(t *testing.T) *repositories.GORMProductRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo := repositories.NewGORMProductRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func sampleProduct(title string) *models.Product {
	return &models.Product{
		Title:       title,
		Description: title + " description",
		Status:      models.StatusActive,
		Date:        "2024-05-01",
		Image:       "https://img.example.com/products/" + title + ".png",
	}
}

// runRepositoryContract exercises behaviour every ProductRepository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) repositories.ProductRepository) {
	ctx := context.Background()

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		p := sampleProduct("lamp")
		require.NoError(t, repo.Create(ctx, p))
		assert.NotEmpty(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())
		assert.False(t, p.UpdatedAt.IsZero())

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "lamp", got.Title)
		assert.Equal(t, p.Image, got.Image)
	})

	t.Run("get all returns every product oldest first", func(t *testing.T) {
		repo := newRepo(t)
		empty, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, title := range []string{"first", "second", "third"} {
			require.NoError(t, repo.Create(ctx, sampleProduct(title)))
			time.Sleep(2 * time.Millisecond)
		}
		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "first", all[0].Title)
		assert.Equal(t, "third", all[2].Title)
	})

	t.Run("get unknown id is not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	})

	t.Run("update persists fields and refreshes updatedAt", func(t *testing.T) {
		repo := newRepo(t)
		p := sampleProduct("chair")
		require.NoError(t, repo.Create(ctx, p))
		created := p.UpdatedAt

		time.Sleep(2 * time.Millisecond)
		p.Status = models.StatusInactive
		p.Title = "armchair"
		require.NoError(t, repo.Update(ctx, p))

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "armchair", got.Title)
		assert.Equal(t, models.StatusInactive, got.Status)
		assert.Equal(t, "chair description", got.Description)
		assert.True(t, got.UpdatedAt.After(created))
	})

	t.Run("update of missing product does not insert it", func(t *testing.T) {
		repo := newRepo(t)
		p := sampleProduct("ghost")
		p.ID = "ghost-id"
		err := repo.Update(ctx, p)
		assert.ErrorIs(t, err, repositories.ErrProductNotFound)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("delete returns snapshot and removes record", func(t *testing.T) {
		repo := newRepo(t)
		p := sampleProduct("desk")
		require.NoError(t, repo.Create(ctx, p))

		deleted, err := repo.Delete(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, deleted.ID)
		assert.Equal(t, "desk", deleted.Title)

		_, err = repo.GetByID(ctx, p.ID)
		assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	})

	t.Run("delete of unknown id leaves collection unchanged", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, sampleProduct("keep")))

		_, err := repo.Delete(ctx, "unknown")
		assert.ErrorIs(t, err, repositories.ErrProductNotFound)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestMemoryProductRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) repositories.ProductRepository {
		return repositories.NewMemoryProductRepository()
	})
}

func TestGORMProductRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) repositories.ProductRepository {
		return newSQLiteRepo(t)
	})
}
