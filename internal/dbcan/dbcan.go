// Package dbcan downloads releases of the dbCAN HMM database.
package dbcan

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// URLs of each dbCAN release by version name.
var URLs = map[string]string{
	"v4":  "http://bcb.unl.edu/dbCAN2/download/Databases/dbCAN-old@UGA/dbCAN-fam-HMMs.txt.v4",
	"v5":  "http://bcb.unl.edu/dbCAN2/download/Databases/dbCAN-old@UGA/dbCAN-fam-HMMs.txt.v5",
	"v6":  "http://bcb.unl.edu/dbCAN2/download/Databases/dbCAN-HMMdb-V6.txt",
	"v7":  "http://bcb.unl.edu/dbCAN2/download/Databases/dbCAN-HMMdb-V7.txt",
	"v8":  "http://bcb.unl.edu/dbCAN2/download/Databases/dbCAN-HMMdb-V8.txt",
	"v9":  "https://bcb.unl.edu/dbCAN2/download/dbCAN-HMMdb-V9.txt",
	"v10": "https://bcb.unl.edu/dbCAN2/download/dbCAN-HMMdb-V10.txt",
}

// HTTPError is returned when the server doesn't answer a download with success.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("failed to download %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// Filename is the name a downloaded release is stored under.
func Filename(version string) string {
	return fmt.Sprintf("dbCAN-HMMdb-%s.txt", version)
}

// Fetch downloads the release of version into dir, unless it is there
// already, and returns the path of the database.
func Fetch(ctx context.Context, client *http.Client, version, dir string) (string, error) {
	url, ok := URLs[version]
	if !ok {
		return "", fmt.Errorf("there is no dbCAN release %s", version)
	}

	dest := filepath.Join(dir, Filename(version))
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		log.WithField("file", dest).Debug("dbCAN release was already downloaded")
		return dest, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}
	if err := Download(ctx, client, url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Download saves url to dest. dest is only created once the whole body
// has been received.
func Download(ctx context.Context, client *http.Client, url, dest string) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to request %s", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{URL: url, Status: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return errors.Wrapf(err, "failed to create a file for %s", dest)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to download %s", url)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dest)
}
