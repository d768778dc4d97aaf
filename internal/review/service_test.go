package review

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyloot/studyloot-backend/internal/note"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/user"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 为每个测试准备独立的内存数据库，并把Redis标记为不可用。
func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&user.User{}, &note.Note{}, &Review{}))
	database.DB = db
	database.UpdateStatus(false, "")
}

func createTestUser(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, database.DB.Create(&user.User{
		ID:           id,
		Name:         "User " + id,
		Email:        id + "@example.com",
		PasswordHash: "x",
	}).Error)
}

func createTestNote(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, database.DB.Create(&note.Note{
		ID:       id,
		Title:    "Note " + id,
		Subject:  "Math",
		AuthorID: "author",
		FileKey:  "notes/" + id + "/file.pdf",
		FileName: "file.pdf",
	}).Error)
}

func loadNote(t *testing.T, id string) note.Note {
	t.Helper()
	var n note.Note
	require.NoError(t, database.DB.First(&n, "id = ?", id).Error)
	return n
}

func TestSubmitRecomputesAggregate(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "author")
	createTestUser(t, "u1")
	createTestUser(t, "u2")
	createTestNote(t, "n1")

	_, err := Submit("n1", "u1", 5, "great")
	require.NoError(t, err)
	n := loadNote(t, "n1")
	assert.Equal(t, 1, n.TotalReviews)
	assert.InDelta(t, 5.0, n.AverageRating, 1e-9)

	_, err = Submit("n1", "u2", 2, "meh")
	require.NoError(t, err)
	n = loadNote(t, "n1")
	assert.Equal(t, 2, n.TotalReviews)
	assert.InDelta(t, 3.5, n.AverageRating, 1e-9)
}

func TestSubmitReplacesExistingReview(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "author")
	createTestUser(t, "u1")
	createTestNote(t, "n1")

	_, err := Submit("n1", "u1", 2, "first impression")
	require.NoError(t, err)

	// 同一用户的再次提交覆盖旧评价，总数不变
	dto, err := Submit("n1", "u1", 5, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, 5, dto.Rating)
	assert.Equal(t, "changed my mind", dto.Comment)

	n := loadNote(t, "n1")
	assert.Equal(t, 1, n.TotalReviews)
	assert.InDelta(t, 5.0, n.AverageRating, 1e-9)

	var count int64
	require.NoError(t, database.DB.Model(&Review{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubmitValidation(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "author")
	createTestUser(t, "u1")
	createTestNote(t, "n1")

	for _, rating := range []int{0, 6, -1} {
		_, err := Submit("n1", "u1", rating, "")
		kind, ok := apperr.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindInvalidArgument, kind, "rating=%d", rating)
	}

	_, err := Submit("missing", "u1", 4, "")
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, kind)
}

func TestSubmitConcurrentKeepsTrueMean(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "author")
	createTestNote(t, "n1")

	const reviewers = 10
	for i := 0; i < reviewers; i++ {
		createTestUser(t, fmt.Sprintf("u%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rating := 1 + i%5
			_, err := Submit("n1", fmt.Sprintf("u%d", i), rating, "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// 聚合列必须等于评价表的真实均值
	var agg struct {
		Count int64
		Avg   float64
	}
	require.NoError(t, database.DB.Model(&Review{}).Where("note_id = ?", "n1").
		Select("COUNT(*) as count, AVG(rating) as avg").Scan(&agg).Error)

	n := loadNote(t, "n1")
	assert.EqualValues(t, reviewers, n.TotalReviews)
	assert.InDelta(t, agg.Avg, n.AverageRating, 1e-9)
}

func TestListByNoteNewestFirst(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "author")
	createTestUser(t, "u1")
	createTestUser(t, "u2")
	createTestNote(t, "n1")

	_, err := Submit("n1", "u1", 4, "older")
	require.NoError(t, err)
	_, err = Submit("n1", "u2", 3, "newer")
	require.NoError(t, err)

	dtos, err := ListByNote("n1")
	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, "newer", dtos[0].Comment)
	assert.Equal(t, "u2", dtos[0].User.ID)
	assert.Equal(t, "older", dtos[1].Comment)

	_, err = ListByNote("missing")
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, kind)
}
