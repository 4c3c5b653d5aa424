// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors renders transport failures against the backend as
// troubleshooting hints.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	perrors "pocketctl/cli/internal/errors"
)

// Category is the kind of network failure, as far as the user is concerned.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryTimeout
	CategoryDNS
	CategoryRefused
	CategoryTLS
	CategoryServer
)

// Classify sorts err into a Category.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryGeneric
	case perrors.Is(err, perrors.KindServer):
		return CategoryServer
	case isTimeoutError(err):
		return CategoryTimeout
	case isDNSError(err):
		return CategoryDNS
	case isConnectionRefusedError(err):
		return CategoryRefused
	case isTLSError(err):
		return CategoryTLS
	default:
		return CategoryGeneric
	}
}

// IsNetwork reports whether err should be rendered by FormatNetworkError
// rather than as a backend response.
func IsNetwork(err error) bool {
	return perrors.Is(err, perrors.KindNetwork) || perrors.Is(err, perrors.KindServer)
}

// FormatNetworkError prints hints for err, which happened while doing
// action against baseURL, and returns err wrapped for the exit message.
func FormatNetworkError(err error, action, baseURL string) error {
	if err == nil {
		return nil
	}
	host := ExtractHostFromURL(baseURL)

	switch Classify(err) {
	case CategoryTimeout:
		pterm.Printf("⏱️  Connection timeout while %s\n\n", action)
		pterm.Printf("%s took too long to respond. Check that the server is not overloaded\n", host)
		pterm.Println("and that no firewall is dropping the connection, then try again.")
	case CategoryDNS:
		pterm.Printf("🌐 Cannot resolve %s while %s\n\n", host, action)
		pterm.Println("Check the backend URL (--url or POCKETCTL_URL) and your DNS settings.")
	case CategoryRefused:
		pterm.Printf("🚫 Connection refused while %s\n\n", action)
		pterm.Printf("Nothing is listening on %s. Is the backend running?\n", host)
		pterm.Println("Start it with `./pocketbase serve` or point --url at the right address.")
	case CategoryTLS:
		pterm.Printf("🔒 Secure connection to %s failed while %s\n\n", host, action)
		pterm.Println("Check the server certificate, any HTTPS proxy, and your system clock.")
	case CategoryServer:
		pterm.Printf("⚠️  Server error while %s\n\n", action)
		pterm.Printf("%s answered with an internal error. Its logs will have the details.\n", host)
	default:
		pterm.Printf("❌ Cannot reach %s while %s\n\n", host, action)
		pterm.Println("Check the backend URL and your network connection.")
		pterm.Debug.Printf("Technical details: %s\n", shorten(err.Error(), 100))
	}
	pterm.Println()

	return fmt.Errorf("network error: %w", err)
}

func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ExtractHostFromURL extracts the host from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "the backend"
	}
	return u.Host
}
