package quiet

import (
	"fmt"
	"os"
	"sync"
)

var (
	mu        sync.Mutex
	depth     int
	devNull   *os.File
	oldStdout *os.File
	oldStderr *os.File
)

// Suppress redirects os.Stdout and os.Stderr to os.DevNull when enabled and
// returns the function that undoes it. When disabled it returns a no-op
// release. The release function is safe to call more than once.
func Suppress(enabled bool) (release func(), err error) {
	if !enabled {
		return func() {}, nil
	}

	mu.Lock()
	defer mu.Unlock()

	if depth == 0 {
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("quiet: open %s: %w", os.DevNull, err)
		}
		devNull = f
		oldStdout, oldStderr = os.Stdout, os.Stderr
		os.Stdout, os.Stderr = devNull, devNull
	}
	depth++

	var once sync.Once
	return func() {
		once.Do(restore)
	}, nil
}

func restore() {
	mu.Lock()
	defer mu.Unlock()

	depth--
	if depth > 0 {
		return
	}
	os.Stdout, os.Stderr = oldStdout, oldStderr
	oldStdout, oldStderr = nil, nil
	_ = devNull.Close()
	devNull = nil
}

// Do runs fn with output suppressed when enabled. Streams are restored
// even if fn panics.
func Do(enabled bool, fn func() error) error {
	release, err := Suppress(enabled)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}
