package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform represents the detected platform
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL1    Platform = "wsl1"
	PlatformWSL2    Platform = "wsl2"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

// cached detection result
var detectedPlatform Platform
var detectionDone bool

// Detect returns the current platform, caching the result
func Detect() Platform {
	if detectionDone {
		return detectedPlatform
	}

	detectedPlatform = detectPlatform()
	detectionDone = true
	return detectedPlatform
}

func detectPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
		// Could be native Linux or WSL - check further
		return detectLinuxOrWSL()
	default:
		return PlatformUnknown
	}
}

// detectLinuxOrWSL distinguishes between native Linux and WSL (1 or 2)
func detectLinuxOrWSL() Platform {
	// Quick check: WSL_DISTRO_NAME is set in WSL environments
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return detectWSLVersion()
	}

	procVersion, err := os.ReadFile("/proc/version")
	if err != nil {
		return PlatformLinux
	}

	if strings.Contains(string(procVersion), "microsoft") || strings.Contains(string(procVersion), "Microsoft") {
		return detectWSLVersion()
	}

	return PlatformLinux
}

// detectWSLVersion distinguishes between WSL1 and WSL2.
// WSL2 has "microsoft-standard" in /proc/version; WSL1 has "Microsoft" without it.
func detectWSLVersion() Platform {
	procVersion, err := os.ReadFile("/proc/version")
	if err == nil {
		versionStr := string(procVersion)
		if strings.Contains(versionStr, "microsoft-standard") {
			return PlatformWSL2
		}
		if strings.Contains(versionStr, "Microsoft") {
			return PlatformWSL1
		}
	}

	// /run/WSL and /dev/vsock exist only under the WSL2 VM
	if _, err := os.Stat("/run/WSL"); err == nil {
		return PlatformWSL2
	}
	if _, err := os.Stat("/dev/vsock"); err == nil {
		return PlatformWSL2
	}

	return PlatformWSL1
}

// IsMacOS returns true on native macOS, where osascript notifications work.
func IsMacOS() bool {
	return Detect() == PlatformMacOS
}

// IsWSL returns true if running in any WSL environment
func IsWSL() bool {
	p := Detect()
	return p == PlatformWSL1 || p == PlatformWSL2
}

// String returns a human-readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL1:
		return "WSL1"
	case PlatformWSL2:
		return "WSL2"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

// CheckFsnotifySupport checks if a path's filesystem supports fsnotify events
// reliably. Returns a warning message for problematic filesystems (9p, nfs,
// cifs, sshfs), or an empty string if fsnotify should work normally.
func CheckFsnotifySupport(path string) string {
	if runtime.GOOS != "linux" {
		return ""
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	mounts, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return ""
	}

	// Longest mountpoint prefix wins.
	var matchedMount, matchedFsType string
	for _, line := range strings.Split(string(mounts), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if strings.HasPrefix(absPath, fields[1]) && len(fields[1]) > len(matchedMount) {
			matchedMount = fields[1]
			matchedFsType = fields[2]
		}
	}

	switch {
	case matchedFsType == "9p":
		return "mappings on 9p mount (WSL2 Windows filesystem): live reload disabled"
	case matchedFsType == "nfs" || matchedFsType == "nfs4":
		return "mappings on NFS mount: live reload may be unreliable"
	case matchedFsType == "cifs" || matchedFsType == "smbfs":
		return "mappings on CIFS/SMB mount: live reload may be unreliable"
	case strings.HasPrefix(matchedFsType, "fuse.sshfs"):
		return "mappings on SSHFS mount: live reload disabled"
	}

	return ""
}
