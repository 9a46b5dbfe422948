package freshness

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Fingerprint hashes the primary document files under dir into a single
// corpus fingerprint: per-file sha256 digests computed in sorted filename
// order, then hashed again. Rotated backup files are excluded so backup
// rotation alone never invalidates an index. A missing directory yields an
// empty fingerprint.
func Fingerprint(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read documents directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasSuffix(name, ".json") || strings.Contains(name, "_backup_") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	combined := sha256.New()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("failed to read %s for fingerprinting: %w", name, err)
		}
		fileHash := sha256.Sum256(data)
		combined.Write([]byte(hex.EncodeToString(fileHash[:])))
	}

	return hex.EncodeToString(combined.Sum(nil)), nil
}
