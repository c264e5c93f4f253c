package util

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"

	"github.com/pkg/browser"
)

// OpenBrowser 打开默认浏览器
func OpenBrowser(url string) error {
	return browser.OpenURL(url)
}

// OpenBrowserWithFallback 默认方式失败时依次尝试备选浏览器
func OpenBrowserWithFallback(url string) error {
	err := OpenBrowser(url)
	if err == nil {
		return nil
	}

	var fallbacks []string
	switch runtime.GOOS {
	case "windows":
		fallbacks = []string{"explorer"}
	case "linux":
		fallbacks = []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"}
	}
	for _, name := range fallbacks {
		if exec.Command(name, url).Start() == nil {
			return nil
		}
	}
	return err
}

// FindAvailablePort 从 startPort 起找第一个可监听的端口，最多尝试 maxTries 个
func FindAvailablePort(startPort, maxTries int) (int, error) {
	for port := startPort; port < startPort+maxTries; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in [%d, %d)", startPort, startPort+maxTries)
}
