package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// etagServer serves body with a fixed ETag and answers 304 to a matching If-None-Match.
func etagServer(t *testing.T, etag string, body []byte, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if etag != "" && r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		if etag != "" {
			w.Header().Set("ETag", etag)
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSource_PlainFile(t *testing.T) {
	var hits atomic.Int32
	srv := etagServer(t, `"v1"`, []byte("Country Code,Region\nUSA,North America\n"), &hits)
	dest := filepath.Join(t.TempDir(), "inputs", "regions.csv")

	res, err := FetchSource(context.Background(), newTestFetcher(), Source{Name: "regions", URL: srv.URL, Dest: dest}, false)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Member)
	assert.Equal(t, int64(38), res.Bytes)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "Country Code,Region\nUSA,North America\n", string(data))

	etag, err := os.ReadFile(dest + ".etag")
	require.NoError(t, err)
	assert.Equal(t, "\"v1\"\n", string(etag))

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFetchSource_UnchangedSkipsWrite(t *testing.T) {
	var hits atomic.Int32
	srv := etagServer(t, `"v1"`, []byte("a,b\n"), &hits)
	dest := filepath.Join(t.TempDir(), "energy.csv")
	src := Source{Name: "energy", URL: srv.URL, Dest: dest}

	_, err := FetchSource(context.Background(), newTestFetcher(), src, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dest, []byte("local edit"), 0o644))

	res, err := FetchSource(context.Background(), newTestFetcher(), src, false)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, int32(2), hits.Load())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "local edit", string(data))
}

func TestFetchSource_ForceIgnoresETag(t *testing.T) {
	var hits atomic.Int32
	srv := etagServer(t, `"v1"`, []byte("a,b\n"), &hits)
	dest := filepath.Join(t.TempDir(), "energy.csv")
	src := Source{Name: "energy", URL: srv.URL, Dest: dest}

	_, err := FetchSource(context.Background(), newTestFetcher(), src, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dest, []byte("local edit"), 0o644))

	res, err := FetchSource(context.Background(), newTestFetcher(), src, true)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestFetchSource_MissingDestRefetches(t *testing.T) {
	var hits atomic.Int32
	srv := etagServer(t, `"v1"`, []byte("a,b\n"), &hits)
	dest := filepath.Join(t.TempDir(), "energy.csv")
	src := Source{Name: "energy", URL: srv.URL, Dest: dest}

	_, err := FetchSource(context.Background(), newTestFetcher(), src, false)
	require.NoError(t, err)
	require.NoError(t, os.Remove(dest))

	res, err := FetchSource(context.Background(), newTestFetcher(), src, false)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.FileExists(t, dest)
}

func TestFetchSource_ZIPMember(t *testing.T) {
	archive, err := os.ReadFile(worldBankZIP(t))
	require.NoError(t, err)

	var hits atomic.Int32
	srv := etagServer(t, "", archive, &hits)
	dest := filepath.Join(t.TempDir(), "gdp.csv")

	res, err := FetchSource(context.Background(), newTestFetcher(), Source{
		Name:   "gdp",
		URL:    srv.URL,
		Member: "API_NY.GDP.MKTP.CD_*.csv",
		Dest:   dest,
	}, false)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "API_NY.GDP.MKTP.CD_DS2_en_csv_v2_3263806.csv", res.Member)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "gdp data", string(data))
	assert.NoFileExists(t, dest+".etag")
}

func TestFetchSource_ZIPWithoutMemberNeedsSingleFile(t *testing.T) {
	archive, err := os.ReadFile(worldBankZIP(t))
	require.NoError(t, err)

	var hits atomic.Int32
	srv := etagServer(t, "", archive, &hits)

	_, err = FetchSource(context.Background(), newTestFetcher(), Source{
		Name: "gdp",
		URL:  srv.URL,
		Dest: filepath.Join(t.TempDir(), "gdp.csv"),
	}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch: gdp")
}

func TestFetchSource_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "energy.csv")
	_, err := FetchSource(context.Background(), newTestFetcher(), Source{Name: "energy", URL: srv.URL, Dest: dest}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch: energy")
	assert.NoFileExists(t, dest)
}
