package favorite

import (
	"testing"
	"time"

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
	require.NoError(t, db.AutoMigrate(&user.User{}, &note.Note{}, &Favorite{}))
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

func createTestNote(t *testing.T, id string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, database.DB.Create(&note.Note{
		ID:        id,
		Title:     "Note " + id,
		Subject:   "Math",
		AuthorID:  "author",
		FileKey:   "notes/" + id + "/file.pdf",
		FileName:  "file.pdf",
		CreatedAt: createdAt,
	}).Error)
}

func TestAddIsIdempotent(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "author")
	createTestUser(t, "u1")
	createTestNote(t, "n1", time.Now())

	require.NoError(t, Add("u1", "n1"))
	// 重复收藏是空操作
	require.NoError(t, Add("u1", "n1"))

	dtos, err := List("u1")
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, "n1", dtos[0].ID)
}

func TestAddUnknownNote(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1")

	err := Add("u1", "ghost")
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, kind)
}

func TestRemoveAndReAdd(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "author")
	createTestUser(t, "u1")
	createTestNote(t, "n1", time.Now())

	require.NoError(t, Add("u1", "n1"))
	require.NoError(t, Remove("u1", "n1"))
	// 移除未收藏的笔记同样是空操作
	require.NoError(t, Remove("u1", "n1"))

	dtos, err := List("u1")
	require.NoError(t, err)
	assert.Empty(t, dtos)

	// 取消后可以重新收藏
	require.NoError(t, Add("u1", "n1"))
	dtos, err = List("u1")
	require.NoError(t, err)
	assert.Len(t, dtos, 1)
}

func TestListNewestFavoriteFirst(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "author")
	createTestUser(t, "u1")
	base := time.Now().Add(-time.Hour)
	createTestNote(t, "n1", base)
	createTestNote(t, "n2", base.Add(time.Minute))

	// 收藏顺序与笔记创建顺序相反，列表按收藏时间排序
	require.NoError(t, Add("u1", "n2"))
	require.NoError(t, Add("u1", "n1"))

	dtos, err := List("u1")
	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, "n1", dtos[0].ID)
	assert.Equal(t, "n2", dtos[1].ID)
}

func TestListsAreIsolatedPerUser(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "author")
	createTestUser(t, "u1")
	createTestUser(t, "u2")
	createTestNote(t, "n1", time.Now())

	require.NoError(t, Add("u1", "n1"))

	dtos, err := List("u2")
	require.NoError(t, err)
	assert.Empty(t, dtos)
}
