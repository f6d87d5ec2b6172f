package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/nano-midea/followers/internal/models"
	"github.com/anonto42/nano-midea/followers/internal/testutil"
)

func newFollow(follower, following string) *models.Follow {
	return &models.Follow{
		ID:          uuid.NewString(),
		FollowerID:  follower,
		FollowingID: following,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestGormFollowRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewGormFollowRepository(testutil.MustOpenTestDB(t))

	_, err := repo.FindFollow(ctx, "u1", "u2")
	require.ErrorIs(t, err, ErrFollowNotFound)

	created := newFollow("u1", "u2")
	require.NoError(t, repo.CreateFollow(ctx, created))

	found, err := repo.FindFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	// direction matters
	_, err = repo.FindFollow(ctx, "u2", "u1")
	require.ErrorIs(t, err, ErrFollowNotFound)

	deleted, err := repo.DeleteFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.DeleteFollow(ctx, "u1", "u2")
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestGormFollowRepositoryRejectsDuplicatePair(t *testing.T) {
	ctx := context.Background()
	repo := NewGormFollowRepository(testutil.MustOpenTestDB(t))

	require.NoError(t, repo.CreateFollow(ctx, newFollow("u1", "u2")))
	err := repo.CreateFollow(ctx, newFollow("u1", "u2"))
	require.ErrorIs(t, err, ErrDuplicateFollow)

	following, err := repo.GetFollowing(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, following, 1)
}

func TestGormFollowRepositoryListsBothDirections(t *testing.T) {
	ctx := context.Background()
	repo := NewGormFollowRepository(testutil.MustOpenTestDB(t))

	require.NoError(t, repo.CreateFollow(ctx, newFollow("a", "c")))
	require.NoError(t, repo.CreateFollow(ctx, newFollow("b", "c")))
	require.NoError(t, repo.CreateFollow(ctx, newFollow("c", "a")))

	followers, err := repo.GetFollowers(ctx, "c")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, followerIDs(followers))

	following, err := repo.GetFollowing(ctx, "c")
	require.NoError(t, err)
	require.Len(t, following, 1)
	require.Equal(t, "a", following[0].FollowingID)

	none, err := repo.GetFollowers(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func followerIDs(follows []models.Follow) []string {
	ids := make([]string, 0, len(follows))
	for _, f := range follows {
		ids = append(ids, f.FollowerID)
	}
	return ids
}
