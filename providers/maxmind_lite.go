package providers

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

var maxmindChecksumRegexp = regexp.MustCompile(`(?i)^[a-f0-9]{64}$`)

const maxmindLiteArchiveName = "archive.tar.gz"

// Download fetches a fresh GeoLite2-City archive, verifies its sha256
// checksum and extracts a database into fs.
func (m *Maxmind) Download(ctx context.Context, fs afero.Fs) error {
	if m.licenseKey == "" {
		return ErrLicenseKeyIsRequired
	}

	expectedChecksum, err := m.downloadChecksum(ctx)
	if err != nil {
		return fmt.Errorf("cannot download a checksum: %w", err)
	}

	actualChecksum, err := m.downloadArchive(ctx, fs)
	if err != nil {
		return fmt.Errorf("cannot download an archive: %w", err)
	}

	if !strings.EqualFold(expectedChecksum, actualChecksum) {
		return fmt.Errorf("checksum mismatch. expected=%s, actual=%s",
			expectedChecksum,
			actualChecksum)
	}

	if err := m.extractArchive(fs); err != nil {
		return fmt.Errorf("cannot extract archive: %w", err)
	}

	return nil
}

func (m *Maxmind) downloadChecksum(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.buildURL("tar.gz.sha256"), nil)
	if err != nil {
		return "", fmt.Errorf("cannot build a request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot fetch checksum page: %w", err)
	}

	defer flushResponse(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("cannot read body of the response: %w", err)
	}

	pos := bytes.IndexAny(data, " \t")
	if pos == -1 {
		return "", errors.New("incorrect response format")
	}

	if !maxmindChecksumRegexp.Match(data[:pos]) {
		return "", errors.New("incorrect checksum format")
	}

	return string(data[:pos]), nil
}

func (m *Maxmind) downloadArchive(ctx context.Context, fs afero.Fs) (string, error) {
	tarFile, err := fs.Create(maxmindLiteArchiveName)
	if err != nil {
		return "", fmt.Errorf("cannot create an archive file: %w", err)
	}

	defer tarFile.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.buildURL("tar.gz"), nil)
	if err != nil {
		return "", fmt.Errorf("cannot build a request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot download an archive: %w", err)
	}

	defer flushResponse(resp.Body)

	checksum, err := hashedCopyResponse(sha256.New, tarFile, resp.Body)
	if err != nil {
		return "", fmt.Errorf("cannot copy file into fs: %w", err)
	}

	return checksum, nil
}

func (m *Maxmind) extractArchive(fs afero.Fs) error {
	defer fs.Remove(maxmindLiteArchiveName) // nolint: errcheck

	archiveFile, err := fs.Open(maxmindLiteArchiveName)
	if err != nil {
		return fmt.Errorf("cannot open archive: %w", err)
	}

	defer archiveFile.Close()

	ungzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("cannot create a gzip reader: %w", err)
	}

	tarReader := tar.NewReader(ungzipReader)

	for {
		header, err := tarReader.Next()

		switch {
		case errors.Is(err, io.EOF):
			return ErrNoFile
		case err != nil:
			return fmt.Errorf("cannot extract a header: %w", err)
		case header.Linkname != "", header.FileInfo().IsDir():
			continue
		case strings.EqualFold(filepath.Ext(header.Name), ".mmdb"):
			return m.copyDatabase(fs, tarReader)
		}
	}
}

func (m *Maxmind) copyDatabase(fs afero.Fs, src io.Reader) error {
	databaseFile, err := fs.Create(maxmindFileName)
	if err != nil {
		return fmt.Errorf("cannot create a file for a database: %w", err)
	}

	defer databaseFile.Close()

	if err := copyResponse(databaseFile, src); err != nil {
		return fmt.Errorf("cannot copy into a database file: %w", err)
	}

	return nil
}

func (m *Maxmind) buildURL(suffix string) string {
	queryValues := url.Values{}

	queryValues.Set("edition_id", "GeoLite2-City")
	queryValues.Set("suffix", suffix)
	queryValues.Set("license_key", m.licenseKey)

	urlStruct := url.URL{
		Scheme:   "https",
		Host:     "download.maxmind.com",
		Path:     "/app/geoip_download",
		RawQuery: queryValues.Encode(),
	}

	return urlStruct.String()
}
