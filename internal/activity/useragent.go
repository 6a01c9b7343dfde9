package activity

import (
	"strings"

	ua "github.com/mileusna/useragent"
)

// DeviceLabel condenses a raw user-agent string into a short browser/OS label
// for the activity table. Unparseable agents fall back to the raw string.
func DeviceLabel(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	parsed := ua.Parse(raw)
	if parsed.Name == "" {
		return raw
	}
	label := parsed.Name
	if parsed.Version != "" {
		label += " " + majorVersion(parsed.Version)
	}
	if parsed.OS != "" {
		label += " / " + parsed.OS
	}
	return label
}

func majorVersion(version string) string {
	if i := strings.IndexByte(version, '.'); i > 0 {
		return version[:i]
	}
	return version
}
