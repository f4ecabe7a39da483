package services_test

import (
	"testing"
	"time"

	"karmafeed/internal/db"
	"karmafeed/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database, migrates the schema and
// installs it as the package-global connection for the duration of the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// A pooled :memory: database vanishes when its connection is recycled.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))

	db.DB = gdb
	t.Cleanup(func() { sqlDB.Close() })
	return gdb
}

func createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username}
	require.NoError(t, db.DB.Create(u).Error)
	return u
}

func createPost(t *testing.T, author *models.User, body string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: author.ID, Body: body}
	require.NoError(t, db.DB.Create(p).Error)
	return p
}

func createComment(t *testing.T, post *models.Post, author *models.User, parent *models.Comment, body string, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{
		PostID:    post.ID,
		UserID:    author.ID,
		Body:      body,
		CreatedAt: at,
	}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(t, db.DB.Create(c).Error)
	return c
}

func countRows(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.DB.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func allKarmaEvents(t *testing.T) []models.KarmaEvent {
	t.Helper()
	var events []models.KarmaEvent
	require.NoError(t, db.DB.Order("id ASC").Find(&events).Error)
	return events
}
