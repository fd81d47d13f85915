package auth

import (
	"strings"

	"github.com/flaco/hooked/internal/config"
	"github.com/flaco/hooked/internal/dto"
	md "github.com/flaco/hooked/internal/models"
)

// GenerateDevice normalizes the caller's transport info into the bounded
// shape persisted alongside a refresh token.
func GenerateDevice(d *dto.DeviceRequest) md.Device {
	return md.Device{
		Info: truncate(describeUA(d.UA), config.MaxDeviceInfoLen),
		IP:   truncate(d.IP, config.MaxIPLen),
	}
}

func describeUA(ua string) string {
	if ua == "" {
		return "Unknown device"
	}

	var b strings.Builder
	switch {
	case strings.Contains(ua, "Edg"):
		b.WriteString("Edge")
	case strings.Contains(ua, "Chrome"):
		b.WriteString("Chrome")
	case strings.Contains(ua, "Firefox"):
		b.WriteString("Firefox")
	case strings.Contains(ua, "Safari"):
		b.WriteString("Safari")
	default:
		b.WriteString("Unknown browser")
	}

	switch {
	case strings.Contains(ua, "Windows"):
		b.WriteString(" - Windows")
	case strings.Contains(ua, "Mac"):
		b.WriteString(" - macOS")
	case strings.Contains(ua, "Android"):
		b.WriteString(" - Android")
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		b.WriteString(" - iOS")
	case strings.Contains(ua, "Linux"):
		b.WriteString(" - Linux")
	default:
		b.WriteString(" - Unknown OS")
	}

	return b.String()
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
