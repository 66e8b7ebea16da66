package tor

import (
	"context"
	"io"
	"net"
	"testing"
	"time"
)

// TestNewClient tests client construction and address validation.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("valid address", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:9050", 25*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("unexpected proxy address: %s", client.ProxyAddress())
		}
	})

	t.Run("invalid addresses", func(t *testing.T) {
		t.Parallel()

		for _, addr := range []string{"", "no-port", ":9050", "host:", "host:0", "host:70000", "host:port"} {
			if _, err := NewClient(addr, time.Second); err != ErrInvalidProxyAddress {
				t.Errorf("NewClient(%q): expected ErrInvalidProxyAddress, got %v", addr, err)
			}
		}
	})
}

// fakeSOCKS5Server accepts one connection and speaks just enough SOCKS5
// for CheckConnection: auth negotiation plus a CONNECT failure reply.
func fakeSOCKS5Server(t *testing.T) net.Listener {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		// Auth negotiation: read greeting, select "no auth".
		buf := make([]byte, 3)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		if _, err := conn.Write([]byte{socks5Version, socks5AuthNone}); err != nil {
			return
		}

		// CONNECT request: read header + domain + port, reply
		// "host unreachable" which is what Tor sends for a
		// non-existent onion service.
		header := make([]byte, 5)
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}
		rest := make([]byte, int(header[4])+2)
		if _, err := io.ReadFull(conn, rest); err != nil {
			return
		}
		_, _ = conn.Write([]byte{socks5Version, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
	}()

	return ln
}

// TestCheckConnection tests the SOCKS5 liveness check.
func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("working SOCKS5 proxy", func(t *testing.T) {
		t.Parallel()

		ln := fakeSOCKS5Server(t)
		defer ln.Close()

		client, err := NewClient(ln.Addr().String(), time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		if status := client.CheckConnection(context.Background()); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %s", status)
		}
	})

	t.Run("nothing listening", func(t *testing.T) {
		t.Parallel()

		// Grab a port and close it so nothing is listening there.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		addr := ln.Addr().String()
		_ = ln.Close()

		client, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		if status := client.CheckConnection(context.Background()); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %s", status)
		}
	})

	t.Run("non-SOCKS5 service", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		defer ln.Close()

		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			buf := make([]byte, 3)
			_, _ = io.ReadFull(conn, buf)
			// An HTTP-ish response, not SOCKS5.
			_, _ = conn.Write([]byte("HT"))
		}()

		client, err := NewClient(ln.Addr().String(), time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %s", status)
		}
	})
}

// TestProxyStatus tests status strings and error mapping.
func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ProxyStatus
		want   error
	}{
		{ProxyStatusOK, nil},
		{ProxyStatusWrongType, ErrProxyNotTor},
		{ProxyStatusCannotConnect, ErrProxyCannotConnect},
		{ProxyStatusTimeout, ErrProxyTimeout},
	}

	for _, tt := range tests {
		if got := tt.status.Error(); got != tt.want {
			t.Errorf("%s.Error() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
