package auth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openSystemBrowser launches the default browser at the given URL.
// Used as the default browser hook; tests substitute their own.
func openSystemBrowser(url string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
