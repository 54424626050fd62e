package tuya

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// capture writes raw API responses to disk for offline debugging.
//
// It is best-effort: write failures are silently ignored so a full
// disk never interferes with polling. Disabled when dir is empty.
type capture struct {
	dir string
	seq atomic.Uint64
}

func newCapture(dir string) *capture {
	return &capture{dir: dir}
}

func (c *capture) dump(method, path string, body []byte) {
	if c.dir == "" {
		return
	}

	slug := strings.Trim(strings.ReplaceAll(path, "/", "_"), "_")
	if i := strings.IndexByte(slug, '?'); i >= 0 {
		slug = slug[:i]
	}
	name := fmt.Sprintf("%s_%s_%s_%d.json",
		time.Now().UTC().Format("20060102T150405"),
		strings.ToLower(method), slug, c.seq.Add(1))

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(c.dir, name), body, 0o644)
}
