// Package restyutil keeps a copy of every http exchange a resty client
// makes, so markup changes on a scraped site can be inspected after a run.
package restyutil

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput empties dir (creating it if needed) and writes
// every message as a file inside it.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0o600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

// MessageID is "<n>-<host><path>.txt" with path separators flattened.
func MessageID(n uint64, rawURL string) string {
	name := rawURL
	u, err := url.Parse(rawURL)
	if err == nil {
		name = u.Host + u.Path
	}
	name = strings.Trim(strings.NewReplacer("/", "_", ":", "_").Replace(name), "_")
	if name == "" {
		name = "request"
	}
	return fmt.Sprintf("%03d-%s.txt", n, name)
}

// Dump writes every response the client receives to output. A nil output
// leaves the client untouched.
func Dump(client *resty.Client, output Output) {
	if output == nil {
		return
	}
	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		n := atomic.AddUint64(&idcounter, 1)
		output.Write(MessageID(n, res.Request.URL), formatHttpMessage(res))
		return nil
	})
}
