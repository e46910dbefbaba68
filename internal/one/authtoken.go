package one

import (
	"fmt"
	"runtime"
)

// DefaultAuthtokenPath returns the platform default location of
// authtoken.secret, ported from the original implementation's
// utils.rs::authtoken_path. Callers should prefer an explicit -s path when
// one is given; this is only the fallback.
func DefaultAuthtokenPath() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "/var/lib/zerotier-one/authtoken.secret", nil
	case "windows":
		return `C:\ProgramData\ZeroTier\One\authtoken.secret`, nil
	case "darwin":
		return "/Library/Application Support/ZeroTier/One/authtoken.secret", nil
	default:
		return "", fmt.Errorf("one: no default authtoken.secret path for %s; pass -s explicitly", runtime.GOOS)
	}
}
