package fetcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Source is one remote input file and where it lands locally.
type Source struct {
	Name   string
	URL    string
	Member string // base-name glob of the archive file to keep when the download is a ZIP
	Dest   string
}

// FetchResult describes the outcome of fetching one Source.
type FetchResult struct {
	Name    string
	Dest    string
	Changed bool
	Bytes   int64
	Member  string // archive file the destination was extracted from, if any
}

// FetchSource downloads src to src.Dest. The ETag of the last download is kept next to the
// destination so an unchanged remote file is not transferred again; force ignores it.
func FetchSource(ctx context.Context, f Fetcher, src Source, force bool) (FetchResult, error) {
	res := FetchResult{Name: src.Name, Dest: src.Dest}
	log := zap.L().With(zap.String("source", src.Name), zap.String("url", src.URL))

	etagPath := src.Dest + ".etag"
	var etag string
	if !force {
		etag = readETag(src.Dest, etagPath)
	}

	body, newETag, changed, err := f.DownloadIfChanged(ctx, src.URL, etag)
	if err != nil {
		return res, eris.Wrapf(err, "fetch: %s", src.Name)
	}
	if !changed {
		log.Info("fetch: source unchanged", zap.String("etag", etag))
		return res, nil
	}
	defer body.Close() //nolint:errcheck

	dir := filepath.Dir(src.Dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, eris.Wrapf(err, "fetch: create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(src.Dest)+"-*.download")
	if err != nil {
		return res, eris.Wrap(err, "fetch: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	n, err := io.Copy(tmp, body)
	if err != nil {
		_ = tmp.Close()
		return res, eris.Wrapf(err, "fetch: %s: write body", src.Name)
	}
	if err := tmp.Close(); err != nil {
		return res, eris.Wrap(err, "fetch: close temp file")
	}
	res.Bytes = n

	zipped, err := isZIP(tmp.Name())
	if err != nil {
		return res, err
	}
	switch {
	case zipped && src.Member != "":
		res.Member, err = ExtractZIPMember(tmp.Name(), src.Member, src.Dest)
	case zipped:
		res.Member, err = ExtractZIPSingle(tmp.Name(), src.Dest)
	default:
		err = eris.Wrap(os.Rename(tmp.Name(), src.Dest), "fetch: move download")
	}
	if err != nil {
		return res, eris.Wrapf(err, "fetch: %s", src.Name)
	}

	if newETag != "" {
		if err := os.WriteFile(etagPath, []byte(newETag+"\n"), 0o644); err != nil {
			return res, eris.Wrap(err, "fetch: write etag")
		}
	} else {
		_ = os.Remove(etagPath)
	}

	res.Changed = true
	log.Info("fetch: source written",
		zap.String("dest", src.Dest),
		zap.Int64("bytes", n),
		zap.String("member", res.Member),
	)
	return res, nil
}

// readETag returns the stored ETag, or "" when either file is missing.
func readETag(dest, etagPath string) string {
	if _, err := os.Stat(dest); err != nil {
		return ""
	}
	data, err := os.ReadFile(etagPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
