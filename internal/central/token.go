package central

import (
	"fmt"
	"os"
	"strings"
)

// centralTokenEnv is read when -t is not given, ported from the original
// implementation's utils.rs::central_token.
const centralTokenEnv = "ZEROTIER_CENTRAL_TOKEN"

// ResolveToken reads the Central API token from path if given, otherwise
// falls back to the ZEROTIER_CENTRAL_TOKEN environment variable.
func ResolveToken(path string) (string, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("central: read token file %s: %w", path, err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	if token := strings.TrimSpace(os.Getenv(centralTokenEnv)); token != "" {
		return token, nil
	}

	return "", fmt.Errorf("central: no token: pass -t or set %s", centralTokenEnv)
}
