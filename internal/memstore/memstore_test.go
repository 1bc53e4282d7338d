package memstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/repository"
)

func TestListingsNewestFirst(t *testing.T) {
	db := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		l := model.Listing{ID: id, Status: model.StatusActive, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, db.Listings().Create(ctx, &l))
	}

	all, err := db.Listings().ListAll(ctx)
	require.NoError(t, err)
	ids := []string{}
	for _, l := range all {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestImagesUniqueOrder(t *testing.T) {
	db := New()
	ctx := context.Background()
	require.NoError(t, db.Listings().Create(ctx, &model.Listing{ID: "l"}))

	require.NoError(t, db.Images().Add(ctx, &model.Image{ID: "1", PropertyID: "l", DisplayOrder: 0}))
	err := db.Images().Add(ctx, &model.Image{ID: "2", PropertyID: "l", DisplayOrder: 0})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = db.Images().Add(ctx, &model.Image{ID: "3", PropertyID: "missing"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, db.Images().Delete(ctx, "other", "1"), repository.ErrNotFound)
}

func TestSessionsExpire(t *testing.T) {
	db := New()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	db.SetClock(func() time.Time { return now })
	ctx := context.Background()
	users := db.Users()

	require.NoError(t, users.Create(ctx, &model.User{ID: "u", Email: "A@example.com"}))
	assert.ErrorIs(t, users.Create(ctx, &model.User{ID: "v", Email: "a@EXAMPLE.com"}), repository.ErrDuplicate)

	require.NoError(t, users.CreateSession(ctx, &model.Session{ID: "s", UserID: "u", ExpiresAt: now.Add(time.Hour)}))
	active, err := users.SessionActive(ctx, "s")
	require.NoError(t, err)
	assert.True(t, active)

	now = now.Add(2 * time.Hour)
	active, err = users.SessionActive(ctx, "s")
	require.NoError(t, err)
	assert.False(t, active)

	u, err := users.GetByID(ctx, "u")
	require.NoError(t, err)
	require.NotNil(t, u.LastSignInAt)
}

func TestPhotosRoundTrip(t *testing.T) {
	p := New().Photos("http://localhost:8083/")
	ctx := context.Background()

	name, url, err := p.Upload(ctx, "kitchen.webp", "image/webp", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8083/images/"+name, url)

	data, ct, err := p.Download(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
	assert.Equal(t, "image/webp", ct)

	_, _, err = p.Download(ctx, "nope.png")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
