package compare

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// KeyFunc derives the pairing key of an archive from its file name.
type KeyFunc func(fileName string) string

// FileNameKey pairs archives by their exact file name.
func FileNameKey(fileName string) string { return fileName }

// VersionlessKey pairs archives by file name with a trailing version
// removed, so lib-1.0.jar and lib-1.1.jar share the key lib.jar.
func VersionlessKey(fileName string) string {
	ext := path.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	parts := strings.Split(base, "-")
	for i := 1; i < len(parts); i++ {
		candidate := strings.Join(parts[i:], "-")
		if candidate == "" || candidate[0] < '0' || candidate[0] > '9' {
			continue
		}
		if _, err := semver.NewVersion(candidate); err == nil {
			return strings.Join(parts[:i], "-") + ext
		}
	}
	return fileName
}

// Scan walks root recursively and maps the key of every file ending in
// suffix to its path. When two files share a key the lexicographically
// smaller path wins.
func Scan(fs billy.Filesystem, root, suffix string, key KeyFunc) (map[string]string, error) {
	if key == nil {
		key = FileNameKey
	}
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	out := make(map[string]string)
	err = util.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), strings.ToLower(suffix)) {
			return nil
		}
		k := key(info.Name())
		if existing, ok := out[k]; ok {
			kept, dropped := existing, p
			if p < existing {
				kept, dropped = p, existing
			}
			logger.WithField("key", k).WithField("kept", kept).WithField("ignored", dropped).Warn("duplicate archive name")
			out[k] = kept
			return nil
		}
		out[k] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return out, nil
}
