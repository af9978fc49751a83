package settings

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

func newTestService(t *testing.T) *SettingsService {
	dsn := filepath.Join(t.TempDir(), "settings.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	return NewSettingsService(NewRepository(db))
}

func TestCreateCommunicationLink(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, KindCommunicationLink, map[string]interface{}{
		"platform": "discord",
		"url":      "https://discord.gg/club",
		"imgUrl":   "/img/discord.png",
		"id":       999,
		"extra":    "dropped",
	})
	require.NoError(t, err)
	link := created.(*model.CommunicationLink)
	assert.NotZero(t, link.ID)
	assert.NotEqual(t, uint(999), link.ID)
	assert.True(t, link.IsActive)

	_, err = svc.Create(ctx, KindCommunicationLink, map[string]interface{}{
		"platform": "discord",
		"url":      "https://discord.gg/other",
		"imgUrl":   "/img/discord.png",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateMissingFields(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), KindCommunicationLink, map[string]interface{}{
		"platform": "discord",
		"url":      "",
	})
	var fieldsErr *FieldsError
	require.ErrorAs(t, err, &fieldsErr)
	assert.Equal(t, []string{"url", "imgUrl"}, fieldsErr.Fields)
}

func TestCreateSponsorRequiresPage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, KindSponsor, map[string]interface{}{
		"name":              "Acme",
		"sponsorshipPageId": float64(42),
	})
	assert.ErrorIs(t, err, ErrPageNotFound)

	page, err := svc.Create(ctx, KindSponsorshipPage, map[string]interface{}{"pageContent": "Our sponsors"})
	require.NoError(t, err)
	pageID := page.(*model.SponsorshipPage).ID

	created, err := svc.Create(ctx, KindSponsor, map[string]interface{}{
		"name":              "Acme",
		"sponsorshipPageId": float64(pageID),
		"logoUrl":           "/img/acme.png",
	})
	require.NoError(t, err)
	sponsor := created.(*model.Sponsor)
	assert.Equal(t, pageID, sponsor.SponsorshipPageID)
	assert.Equal(t, "/img/acme.png", sponsor.LogoURL)
}

func TestUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, KindCommunicationLink, map[string]interface{}{
		"platform": "discord",
		"url":      "https://discord.gg/club",
		"imgUrl":   "/img/discord.png",
	})
	require.NoError(t, err)
	id := created.(*model.CommunicationLink).ID

	updated, err := svc.Update(ctx, KindCommunicationLink, id, map[string]interface{}{
		"isActive": false,
		"imgUrl":   "/img/ignored.png",
	})
	require.NoError(t, err)
	link := updated.(*model.CommunicationLink)
	assert.False(t, link.IsActive)
	assert.Equal(t, "/img/discord.png", link.ImgURL)

	_, err = svc.Update(ctx, KindCommunicationLink, id, map[string]interface{}{"imgUrl": "/img/x.png"})
	assert.ErrorIs(t, err, ErrNoFields)

	_, err = svc.Update(ctx, KindCommunicationLink, id+100, map[string]interface{}{"url": "https://x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, KindCommunicationLink, 0, map[string]interface{}{"url": "https://x"})
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestDeletePageCascades(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	page, err := svc.Create(ctx, KindSponsorshipPage, map[string]interface{}{"pageContent": "Sponsors"})
	require.NoError(t, err)
	pageID := page.(*model.SponsorshipPage).ID
	_, err = svc.Create(ctx, KindSponsor, map[string]interface{}{"name": "Acme", "sponsorshipPageId": float64(pageID)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, KindSponsorshipPage, pageID))
	assert.ErrorIs(t, svc.Delete(ctx, KindSponsorshipPage, pageID), ErrNotFound)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.SponsorshipPages)
}

func TestSnapshotOrdering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, platform := range []string{"youtube", "discord", "instagram"} {
		_, err := svc.Create(ctx, KindCommunicationLink, map[string]interface{}{
			"platform": platform, "url": "https://" + platform, "imgUrl": "/img/" + platform,
		})
		require.NoError(t, err)
	}
	page, err := svc.Create(ctx, KindSponsorshipPage, map[string]interface{}{"pageContent": "Sponsors"})
	require.NoError(t, err)
	pageID := float64(page.(*model.SponsorshipPage).ID)
	for _, name := range []string{"Zeta", "Acme"} {
		_, err := svc.Create(ctx, KindSponsor, map[string]interface{}{"name": name, "sponsorshipPageId": pageID})
		require.NoError(t, err)
	}

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.CommunicationLinks, 3)
	assert.Equal(t, "discord", snap.CommunicationLinks[0].Platform)
	assert.Equal(t, "youtube", snap.CommunicationLinks[2].Platform)
	assert.Nil(t, snap.MediaConfig)
	require.Len(t, snap.SponsorshipPages, 1)
	require.Len(t, snap.SponsorshipPages[0].Sponsors, 2)
	assert.Equal(t, "Acme", snap.SponsorshipPages[0].Sponsors[0].Name)

	_, err = svc.Create(ctx, KindMediaConfig, map[string]interface{}{"mediaDriveUrl": "https://drive/club"})
	require.NoError(t, err)
	snap, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.MediaConfig)
	assert.Equal(t, "https://drive/club", snap.MediaConfig.MediaDriveURL)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(float64(3))
	require.NoError(t, err)
	assert.Equal(t, uint(3), id)

	for _, raw := range []interface{}{float64(0), float64(-1), 1.5, "3", nil, true} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, "%v", raw)
	}
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("sponsor")
	require.NoError(t, err)
	assert.Equal(t, KindSponsor, kind)

	_, err = ParseKind("user")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
