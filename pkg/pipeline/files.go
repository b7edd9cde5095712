package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/oasforge/oasforge/pkg/errors"
)

// discoverFiles walks every root recursively and appends the explicit
// includes. Walked paths are sorted so output is deterministic regardless
// of platform directory order; includes keep their listed order and come
// after the walked set.
func (p *Pipeline) discoverFiles(roots, includes []string) ([]string, error) {
	var walked []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				walked = append(walked, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.WrapIO("walk", root, err)
		}
	}
	sort.Strings(walked)

	for _, include := range includes {
		if _, err := os.Stat(include); err == nil {
			walked = append(walked, include)
		} else {
			p.logger.Warn().Str("path", include).Msg("Included file does not exist")
		}
	}

	return walked, nil
}
