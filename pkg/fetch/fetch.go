package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/httpclient"
	"github.com/pkg/errors"
)

// ProgressFunc receives the bytes read so far and the announced length.
type ProgressFunc func(downloaded, total int64)

// Fetcher downloads source tarballs. The zero value is ready to use.
// Every Download issues exactly one request; a failure is returned as is.
type Fetcher struct {
	Client   *http.Client
	Progress ProgressFunc
}

// Download writes the body of url to destPath. The file only appears at
// destPath once the whole body has been received.
func (f *Fetcher) Download(ctx context.Context, url, destPath string) error {
	client := f.Client
	if client == nil {
		client = httpclient.New()
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}

	req, err := httpclient.NewRequest(ctx, url)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d fetching %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	var body io.Reader = resp.Body
	if f.Progress != nil && resp.ContentLength > 0 {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, fn: f.Progress}
	}
	written, err := io.Copy(tmpFile, body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}
	if written == 0 {
		return fmt.Errorf("no content downloaded from %s", url)
	}

	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "failed to close temporary file")
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return errors.Wrap(err, "failed to move downloaded file")
	}
	log.Debugf("downloaded %s (%d bytes)", url, written)
	return nil
}

// LogProgress reports download progress on the debug log.
func LogProgress(downloaded, total int64) {
	log.Debugf("downloaded %d%% (%d of %d bytes)", downloaded*100/total, downloaded, total)
}

// progressReader calls fn whenever another tenth of total has been read,
// and once more at EOF.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	tenths int64
	fn     ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if t := p.read * 10 / p.total; t > p.tenths || (err == io.EOF && p.read > 0) {
		p.tenths = t
		p.fn(p.read, p.total)
	}
	return n, err
}
