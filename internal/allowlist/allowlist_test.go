package allowlist

import (
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAllowList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whitelist.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newList(t *testing.T, addrs ...string) *AllowList {
	t.Helper()
	list, err := Parse(strings.NewReader(strings.Join(addrs, "\n")))
	require.NoError(t, err)
	return list
}

func contains(list *AllowList, ip string) bool {
	return list.Contains(netip.MustParseAddr(ip))
}

func TestLoad_WhitespaceSeparated(t *testing.T) {
	path := writeAllowList(t, "127.0.0.1\n10.0.0.5   192.168.1.1\n\t::1\n\n127.0.0.1\n")

	list, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, list.Len())
	for _, ip := range []string{"127.0.0.1", "10.0.0.5", "192.168.1.1", "::1"} {
		assert.True(t, contains(list, ip), ip)
	}
	assert.False(t, contains(list, "10.0.0.6"))
}

func TestLoad_EmptyFile(t *testing.T) {
	list, err := Load(writeAllowList(t, ""))
	require.NoError(t, err)
	assert.Zero(t, list.Len())
	assert.False(t, contains(list, "127.0.0.1"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestLoad_InvalidToken(t *testing.T) {
	_, err := Load(writeAllowList(t, "127.0.0.1 localhost\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Contains(t, err.Error(), "localhost")
}

func TestParse(t *testing.T) {
	list, err := Parse(strings.NewReader("1.2.3.4 5.6.7.8"))
	require.NoError(t, err)
	assert.True(t, contains(list, "5.6.7.8"))
}

func TestContains_MappedIPv4(t *testing.T) {
	list := newList(t, "127.0.0.1")

	assert.True(t, contains(list, "::ffff:127.0.0.1"))
	assert.False(t, contains(list, "::ffff:127.0.0.2"))
}

func TestPermits(t *testing.T) {
	list := newList(t, "127.0.0.1", "2001:db8::1")

	tests := []struct {
		name string
		addr net.Addr
		want bool
	}{
		{"tcp v4 listed", &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5000}, true},
		{"tcp v4 16-byte form", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1}, true},
		{"tcp v6 listed", &net.TCPAddr{IP: net.ParseIP("2001:db8::1"), Port: 1}, true},
		{"tcp not listed", &net.TCPAddr{IP: net.ParseIP("10.1.1.1"), Port: 1}, false},
		{"tcp mapped v4", &net.TCPAddr{IP: net.ParseIP("::ffff:127.0.0.1"), Port: 1}, true},
		{"udp listed", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1}, true},
		{"unix socket", &net.UnixAddr{Name: "/tmp/sock", Net: "unix"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, list.Permits(tt.addr))
		})
	}
}
