package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// ExtractZIPMember copies the first archive file whose base name matches pattern to destPath.
// The World Bank bulk downloads ship the data CSV next to two metadata CSVs.
func ExtractZIPMember(zipPath, pattern, destPath string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		ok, err := path.Match(pattern, path.Base(f.Name))
		if err != nil {
			return "", eris.Wrapf(err, "zip: member pattern %q", pattern)
		}
		if ok {
			return f.Name, writeZIPEntry(f, destPath)
		}
	}

	return "", eris.Errorf("zip: no file matching %q in archive", pattern)
}

// ExtractZIPSingle copies the single file from a ZIP that contains exactly one file to destPath.
func ExtractZIPSingle(zipPath, destPath string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	// Filter to only files (skip directories)
	var files []*zip.File
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			files = append(files, f)
		}
	}

	if len(files) != 1 {
		return "", eris.Errorf("zip: expected exactly 1 file, got %d", len(files))
	}

	return files[0].Name, writeZIPEntry(files[0], destPath)
}

// isZIP reports whether the file starts with the local file header signature.
func isZIP(p string) (bool, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, eris.Wrap(err, "zip: open download")
	}
	defer f.Close() //nolint:errcheck

	magic := make([]byte, 4)
	n, err := io.ReadFull(f, magic)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "zip: read header")
	}
	return n == 4 && string(magic) == "PK\x03\x04", nil
}

func writeZIPEntry(f *zip.File, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return eris.Wrap(err, "zip: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return eris.Wrap(err, "zip: create file")
	}

	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return eris.Wrap(err, "zip: write file")
	}
	return eris.Wrap(out.Close(), "zip: close file")
}
