// Package utils contains small helpers shared across the application.
package utils

import (
	"log"
	"os/exec"
	"runtime"
)

// OpenBrowser opens the URL in the platform's default browser. Failing to
// open one is never fatal; the URL is logged so it can be opened manually.
func OpenBrowser(url string) {
	name, args := browserCommand(runtime.GOOS, url)
	if name == "" {
		log.Printf("Open %s in your browser", url)
		return
	}
	if err := exec.Command(name, args...).Start(); err != nil {
		log.Printf("Failed to open browser: %v. Open %s manually", err, url)
	}
}

// browserCommand returns the platform launcher for the URL. An empty command
// name means the platform has no known launcher.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "linux":
		return "xdg-open", []string{url}
	default:
		return "", nil
	}
}
