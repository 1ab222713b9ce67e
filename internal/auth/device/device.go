// Package device derives a human-readable device label from the User-Agent
// header. The label is shown in the user's session list so they can tell
// "Chrome on Mac OS X" from "Safari on iPhone".
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent returns a display label like "Chrome on Mac OS X".
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	os := ua.OS()

	if browser == "" && os == "" {
		return "Unknown Device"
	}
	if browser == "" {
		return os
	}
	if os == "" {
		return browser
	}
	return fmt.Sprintf("%s on %s", browser, os)
}

// Parts returns the raw browser and OS names for storage.
func Parts(raw string) (browser, os string) {
	if strings.TrimSpace(raw) == "" {
		return "", ""
	}
	ua := useragent.New(raw)
	browser, _ = ua.Browser()
	return browser, ua.OS()
}
