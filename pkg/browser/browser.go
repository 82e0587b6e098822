// Package browser opens URLs in the system browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Open opens the specified URL in the default browser. Only http and https
// URLs are passed to the system launcher.
func Open(urlString string) error {
	if err := Validate(urlString); err != nil {
		return err
	}
	cmd, err := command(runtime.GOOS, urlString)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Validate rejects anything that is not an absolute http or https URL.
func Validate(urlString string) error {
	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https allowed)", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}
	return nil
}

func command(goos, urlString string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", urlString), nil // #nosec G204 -- URL validated
	case "darwin":
		return exec.Command("open", urlString), nil // #nosec G204 -- URL validated
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", urlString), nil // #nosec G204 -- URL validated
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
