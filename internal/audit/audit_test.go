package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/khanghh/clubhub/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRecordAuthEvents(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	repo := NewAuditEventRepository(db)
	Initialize(repo)
	ctx := context.Background()

	require.NoError(t, RecordVerification(ctx, AuthRecord{Email: "a@x.com", IP: "10.0.0.1", UserAgent: "test", Reason: "invalid code"}))
	require.NoError(t, RecordLogin(ctx, AuthRecord{UserID: 7, Email: "a@x.com", IP: "10.0.0.1", UserAgent: "test", Success: true}))

	events, err := repo.ListByEmail(ctx, "a@x.com", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeLoginSuccess, events[0].EventType)
	assert.Equal(t, uint(7), events[0].UserID)
	assert.Equal(t, EventTypeVerifyFailure, events[1].EventType)
	assert.Equal(t, "invalid code", events[1].Reason)
}
