package users

import (
	"context"
	"testing"
	"time"

	"github.com/khanghh/clubhub/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperDeletesOnlyExpiredUnverified(t *testing.T) {
	repo := newFakeUserRepo()
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	repo.put(model.User{Email: "expired@x.com", VerificationExpiresAt: &past})
	repo.put(model.User{Email: "waiting@x.com", VerificationExpiresAt: &future})
	repo.put(model.User{Email: "verified@x.com", IsVerified: true, VerificationExpiresAt: &past})

	sweeper := NewSweeper(repo, nil, time.Hour)
	sweeper.now = func() time.Time { return now }

	deleted, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	ctx := context.Background()
	_, err = repo.FirstByEmail(ctx, "expired@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.FirstByEmail(ctx, "waiting@x.com")
	assert.NoError(t, err)
	_, err = repo.FirstByEmail(ctx, "verified@x.com")
	assert.NoError(t, err)
}

func TestSweeperStartStop(t *testing.T) {
	repo := newFakeUserRepo()
	past := time.Now().Add(-time.Minute)
	repo.put(model.User{Email: "expired@x.com", VerificationExpiresAt: &past})

	sweeper := NewSweeper(repo, nil, time.Hour)
	sweeper.Start()
	assert.Eventually(t, func() bool {
		_, err := repo.FirstByEmail(context.Background(), "expired@x.com")
		return err != nil
	}, time.Second, 10*time.Millisecond)
	sweeper.Stop()
}
