package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/artpar/cookiedesk/internal/collab"
	"github.com/artpar/cookiedesk/internal/cookies"
	"github.com/artpar/cookiedesk/internal/cookies/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteApp(t *testing.T, store *sqlite.Store, pageURL string) (*App, *memClipboard) {
	t.Helper()
	clip := &memClipboard{}
	a := New(store,
		WithTab(collab.StaticTab{URL: pageURL}),
		WithConfirmer(collab.AlwaysConfirm{}),
		WithClipboard(clip),
	)
	return a, clip
}

func newMemoryStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLite_SessionWorkflow(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	parent, _ := newSQLiteApp(t, store, "https://example.com/")
	require.NoError(t, parent.Add(ctx, "root", "r"))

	a, clip := newSQLiteApp(t, store, "https://www.example.com/login")

	res, err := a.Import(ctx, `{"sid":"abc","theme":"dark","count":3}`)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, []string{"count", "root", "sid", "theme"}, names(a.Snapshot()))

	sid, err := a.Find("sid", "", "")
	require.NoError(t, err)
	assert.Equal(t, ".www.example.com", sid.Domain)

	s := a.BeginEdit(sid)
	s.PendingName = "session"
	s.PendingValue = "xyz"
	require.NoError(t, a.SaveEdit(ctx, s))
	assert.Equal(t, []string{"count", "root", "session", "theme"}, names(a.Snapshot()))

	session, err := a.Find("session", "", "")
	require.NoError(t, err)
	assert.Equal(t, "xyz", session.Value)
	assert.Equal(t, sid.Domain, session.Domain)

	delivery, err := a.Export(ctx)
	require.NoError(t, err)
	assert.True(t, delivery.Copied)
	assert.JSONEq(t, `{"count":"3","root":"r","session":"xyz","theme":"dark"}`, clip.text)

	deleted, err := a.Delete(ctx, session)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"count", "root", "theme"}, names(a.Snapshot()))

	cleared, confirmed, err := a.ClearAll(ctx)
	require.NoError(t, err)
	assert.True(t, confirmed)
	assert.Equal(t, 3, cleared.Succeeded)
	assert.Empty(t, a.Snapshot())

	all, err := store.GetAll(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLite_ImportPartialFailure(t *testing.T) {
	ctx := context.Background()
	a, _ := newSQLiteApp(t, newMemoryStore(t), "https://www.example.com/")

	res, err := a.Import(ctx, "a=1; bad name=2; b=2; c%01=3; d=4")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.Succeeded)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "bad name", res.Failures[0].Name)
	assert.ErrorIs(t, res.Failures[0].Err, cookies.ErrBackendRejected)
	assert.Equal(t, "c\x01", res.Failures[1].Name)
	assert.Equal(t, []string{"a", "b", "d"}, names(a.Snapshot()))
}

func TestSQLite_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	src, srcClip := newSQLiteApp(t, store, "https://src.example.com/")
	_, err := src.Import(ctx, `{"a":"1","html":"<b>&</b>","unicode":"héllo","empty":""}`)
	require.NoError(t, err)
	_, err = src.Export(ctx)
	require.NoError(t, err)

	dst, dstClip := newSQLiteApp(t, store, "https://dst.example.org/")
	res, err := dst.Import(ctx, srcClip.text)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Succeeded)

	_, err = dst.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, srcClip.text, dstClip.text)
}

// The main domain of a host under a multi-part public suffix is the suffix
// itself, so the second listing query also returns sibling sites' cookies.
func TestSQLite_MultiPartSuffixListing(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	other, _ := newSQLiteApp(t, store, "https://other.co.uk/")
	require.NoError(t, other.Add(ctx, "foreign", "1"))

	a, _ := newSQLiteApp(t, store, "https://shop.example.co.uk/")
	require.NoError(t, a.Add(ctx, "own", "2"))

	assert.Equal(t, []string{"foreign", "own"}, names(a.Snapshot()))
}

func TestSQLite_FilePersistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "cookies.db")

	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	a, _ := newSQLiteApp(t, store, "https://www.example.com/")
	require.NoError(t, a.Add(ctx, "sid", "abc"))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	b, _ := newSQLiteApp(t, reopened, "https://www.example.com/")
	list, err := b.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sid", list[0].Name)
	assert.Equal(t, "abc", list[0].Value)
}
