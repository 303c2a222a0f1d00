package service

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/model"
)

func TestCertificateService_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"Alice", "Albert", "Bob"} {
		_, err := env.svc.Upload(ctx, name, env.upload(t, name+".pdf").StoredName)
		require.NoError(t, err)
	}

	t.Run("case-insensitive substring", func(t *testing.T) {
		matches, err := env.svc.Search(ctx, "AL")
		require.NoError(t, err)
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.ParticipantName)
		}
		assert.ElementsMatch(t, []string{"Alice", "Albert"}, names)
	})

	t.Run("no match returns empty list", func(t *testing.T) {
		matches, err := env.svc.Search(ctx, "zz")
		require.NoError(t, err)
		assert.NotNil(t, matches)
		assert.Empty(t, matches)
	})

	t.Run("query shorter than two characters after trim", func(t *testing.T) {
		for _, q := range []string{"", "a", "  b  "} {
			_, err := env.svc.Search(ctx, q)
			assert.Equal(t, apperrors.ErrCodeQueryTooShort, apperrors.GetCode(err), "query %q", q)
		}
	})

	t.Run("results are capped", func(t *testing.T) {
		env.svc.searchLimit = 1
		defer func() { env.svc.searchLimit = 20 }()

		matches, err := env.svc.Search(ctx, "al")
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})
}

func TestCertificateService_Upload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("always inserts a new record", func(t *testing.T) {
		first, err := env.svc.Upload(ctx, "  Carol  ", env.upload(t, "c.pdf").StoredName)
		require.NoError(t, err)
		second, err := env.svc.Upload(ctx, "Carol", env.upload(t, "c.pdf").StoredName)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, "Carol", first.ParticipantName)
		assert.Equal(t, "carol", first.ParticipantNameLower)

		stats, err := env.svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Total)
	})

	t.Run("blank name removes the stored file", func(t *testing.T) {
		f := env.upload(t, "blank.pdf")

		_, err := env.svc.Upload(ctx, "   ", f.StoredName)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
		assert.False(t, env.store.Exists(f.StoredName))
	})
}

func TestCertificateService_OpenDownload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cert, err := env.svc.Upload(ctx, "Dana  Scully", env.upload(t, "d.pdf").StoredName)
	require.NoError(t, err)

	t.Run("streams the file and counts the download", func(t *testing.T) {
		dl, err := env.svc.OpenDownload(ctx, cert.ID, true)
		require.NoError(t, err)
		defer dl.File.Close()

		body, err := io.ReadAll(dl.File)
		require.NoError(t, err)
		assert.Contains(t, string(body), "%PDF")
		assert.Equal(t, "Recon2Root_Certificate_Dana_Scully.pdf", dl.Filename)

		got, err := env.certs.FindByID(ctx, cert.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.DownloadedCount)
	})

	t.Run("uncounted open leaves the counter alone", func(t *testing.T) {
		dl, err := env.svc.OpenDownload(ctx, cert.ID, false)
		require.NoError(t, err)
		dl.File.Close()

		got, err := env.certs.FindByID(ctx, cert.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.DownloadedCount)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := env.svc.OpenDownload(ctx, model.NewID(), true)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
		assert.Equal(t, "Certificate not found", appErr.Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := env.svc.OpenDownload(ctx, "../../etc/passwd", true)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("missing file does not count", func(t *testing.T) {
		f := env.upload(t, "gone.pdf")
		gone, err := env.svc.Upload(ctx, "Gone", f.StoredName)
		require.NoError(t, err)
		env.store.Remove(f.StoredName)

		_, err = env.svc.OpenDownload(ctx, gone.ID, true)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
		assert.Equal(t, "Certificate file not found on server", appErr.Message)

		got, err := env.certs.FindByID(ctx, gone.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.DownloadedCount)
	})
}

func TestCertificateService_StatsConsistency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.Upload(ctx, "Alice", env.upload(t, "a.pdf").StoredName)
	require.NoError(t, err)
	b, err := env.svc.Upload(ctx, "Bob", env.upload(t, "b.pdf").StoredName)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		id := b.ID
		if i%3 == 0 {
			id = a.ID
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			dl, err := env.svc.OpenDownload(ctx, id, true)
			if assert.NoError(t, err) {
				dl.File.Close()
			}
		}(id)
	}
	wg.Wait()

	stats, err := env.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(6), stats.TotalDownloads)

	gotA, err := env.certs.FindByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := env.certs.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gotA.DownloadedCount)
	assert.Equal(t, int64(4), gotB.DownloadedCount)
}

func TestDownloadFilename(t *testing.T) {
	assert.Equal(t, "Recon2Root_Certificate_Alice.pdf", DownloadFilename("Alice"))
	assert.Equal(t, "Recon2Root_Certificate_Jean_Luc_Picard.pdf", DownloadFilename("Jean \t Luc\nPicard"))
}
