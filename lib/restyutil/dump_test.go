package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (m *memoryOutput) Write(id, contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.messages == nil {
		m.messages = map[string]string{}
	}
	m.messages[id] = contents
}

func TestMessageID(t *testing.T) {
	require.Equal(t, "001-mabimobi.life.txt", MessageID(1, "https://mabimobi.life/"))
	require.Equal(t, "012-mabimobi.life_tracker_v2.txt", MessageID(12, "https://mabimobi.life/tracker/v2"))
	require.Equal(t, "003-request.txt", MessageID(3, ""))
}

func TestDump(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<p>구름황야 01:02:03</p>"))
	}))
	defer srv.Close()

	out := &memoryOutput{}
	client := resty.New()
	client.SetHeader("accept-language", "ko-KR")
	Dump(client, out)

	_, err := client.R().Get(srv.URL + "/tracker/v2")
	require.NoError(t, err)

	require.Len(t, out.messages, 1)
	for id, msg := range out.messages {
		require.Contains(t, id, "tracker_v2")
		require.Contains(t, msg, "---- REQUEST ----")
		require.Contains(t, msg, "GET "+srv.URL+"/tracker/v2")
		require.Contains(t, msg, "Accept-Language: ko-KR")
		require.Contains(t, msg, "---- RESPONSE ----")
		require.Contains(t, msg, "<p>구름황야 01:02:03</p>")
	}
}

func TestDumpNilOutput(t *testing.T) {
	client := resty.New()
	Dump(client, nil)
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0o600))

	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	out.Write("001-a.txt", "hello")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "001-a.txt", entries[0].Name())
}
