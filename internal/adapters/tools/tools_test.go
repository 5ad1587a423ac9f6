package tools

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistrySpecs(t *testing.T) {
	t.Parallel()

	specs := Default().Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "get_system_info", specs[0].Name)
	assert.Equal(t, "list_files", specs[1].Name)
	assert.NoError(t, domain.SessionConfig{Tools: specs}.Validate())
}

func TestRegistryRejectsDuplicatesAndUnknownTools(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	handler := func(context.Context, map[string]any) (string, error) { return "ok", nil }
	require.NoError(t, r.Register(domain.ToolSpec{Name: "echo"}, handler))
	assert.ErrorContains(t, r.Register(domain.ToolSpec{Name: "echo"}, handler), "duplicate tool")
	assert.Error(t, r.Register(domain.ToolSpec{Name: ""}, handler))
	assert.Error(t, r.Register(domain.ToolSpec{Name: "nil"}, nil))

	out, err := r.Invoke(context.Background(), "echo", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = r.Invoke(context.Background(), "missing", nil)
	assert.ErrorContains(t, err, "unknown tool")
}

func TestListFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for i := 0; i < 25; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("file-%02d.txt", i)), []byte("x"), 0o600))
	}

	out, err := ListFiles(context.Background(), map[string]any{"path": dir})
	require.NoError(t, err)
	assert.Len(t, strings.Split(out, "\n"), maxListedEntries)

	empty := t.TempDir()
	out, err = ListFiles(context.Background(), map[string]any{"path": empty})
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = ListFiles(context.Background(), map[string]any{"path": filepath.Join(dir, "nope")})
	require.NoError(t, err)
	assert.Equal(t, "Invalid path.", out)
}

func TestListFilesDefaultsToWorkingDirectory(t *testing.T) {
	t.Parallel()

	out, err := ListFiles(context.Background(), map[string]any{"path": 42})
	require.NoError(t, err)
	assert.Contains(t, out, "tools_test.go")
}

func TestSystemInfo(t *testing.T) {
	t.Parallel()

	info := SystemInfo{
		Hostname: func() (string, error) { return "devbox", nil },
		Dial: func(network, address string) (net.Conn, error) {
			assert.Equal(t, "udp", network)
			assert.Equal(t, probeAddress, address)
			return &fakeConn{local: &net.UDPAddr{IP: net.ParseIP("192.168.1.20"), Port: 40000}}, nil
		},
		Release: func() string { return "6.8.0" },
	}

	out, err := info.Handle(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Host: devbox | IP: 192.168.1.20 | OS: "+runtime.GOOS+" 6.8.0", out)
}

func TestSystemInfoFallsBackToLoopback(t *testing.T) {
	t.Parallel()

	info := SystemInfo{
		Hostname: func() (string, error) { return "devbox", nil },
		Dial:     func(string, string) (net.Conn, error) { return nil, errors.New("network unreachable") },
		Release:  func() string { return "" },
	}

	out, err := info.Handle(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, out, "IP: 127.0.0.1")
}

type fakeConn struct {
	net.Conn
	local net.Addr
}

func (c *fakeConn) LocalAddr() net.Addr {
	return c.local
}

func (c *fakeConn) Close() error {
	return nil
}
