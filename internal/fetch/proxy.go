package fetch

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/net/proxy"
)

// dialContextFunc matches http.Transport.DialContext.
type dialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// socks5DialContext returns a dial function that connects through the
// SOCKS5 proxy at address.
func socks5DialContext(address string) (dialContextFunc, error) {
	if !isValidProxyAddress(address) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)
		go func() {
			conn, err := dialer.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()

		select {
		case r := <-resultCh:
			return r.conn, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, nil
}

// isValidProxyAddress checks that address is "host:port" with a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
