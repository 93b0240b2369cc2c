package page

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Site is a fully rendered static site.
type Site struct {
	Index string
	Bar   string
	Donut string
}

// Export writes index.html, bar.svg, donut.svg and every file of assets
// (under static/) into dir, creating it if needed.
func Export(dir string, site Site, assets fs.FS) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}

	var written []string
	write := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.Wrapf(err, "creating %s", filepath.Dir(path))
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.Wrapf(err, "writing %s", name)
		}
		written = append(written, path)
		return nil
	}

	for _, f := range []struct{ name, body string }{
		{"index.html", site.Index},
		{"bar.svg", site.Bar},
		{"donut.svg", site.Donut},
	} {
		if err := write(f.name, []byte(f.body)); err != nil {
			return written, err
		}
	}

	if assets == nil {
		return written, nil
	}
	err := fs.WalkDir(assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(assets, path)
		if err != nil {
			return errors.Wrapf(err, "reading asset %s", path)
		}
		return write(filepath.Join("static", filepath.FromSlash(path)), data)
	})
	return written, err
}
