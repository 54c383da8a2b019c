// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pagemeta

import (
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"syscall"
)

// ErrBlockedURL is returned for page URLs that point at a non-public
// address, a non-web port or a non-http scheme.
var ErrBlockedURL = errors.New("page URL blocked")

const maxRedirects = 5

// validateURL checks pageURL before any request is made.
func validateURL(pageURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlockedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrBlockedURL, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: no host", ErrBlockedURL)
	}
	if isBlockedHostname(host) {
		return nil, fmt.Errorf("%w: host %s", ErrBlockedURL, host)
	}
	if !isAllowedPort(u.Port()) {
		return nil, fmt.Errorf("%w: port %s", ErrBlockedURL, u.Port())
	}
	return u, nil
}

func isAllowedPort(port string) bool {
	if port == "" {
		return true
	}
	n, err := strconv.Atoi(port)
	return err == nil && (n == 80 || n == 443)
}

func isBlockedHostname(host string) bool {
	host = strings.TrimSuffix(host, ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".internal") {
		return true
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return isPrivateIP(ip)
	}
	return false
}

func isPrivateIP(ip netip.Addr) bool {
	if !ip.IsValid() {
		return true
	}
	ip = ip.Unmap()
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast()
}

// dialControl runs after name resolution, so it sees the address actually
// dialed. Redirects and DNS answers pointing inward are refused here.
func dialControl(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: dial address %q", ErrBlockedURL, address)
	}
	if isPrivateIP(ap.Addr()) {
		return fmt.Errorf("%w: %s resolves to a non-public address", ErrBlockedURL, address)
	}
	if !isAllowedPort(strconv.Itoa(int(ap.Port()))) {
		return fmt.Errorf("%w: port %d", ErrBlockedURL, ap.Port())
	}
	return nil
}

// checkRedirect validates every redirect target like the original URL.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	_, err := validateURL(req.URL.String())
	return err
}
