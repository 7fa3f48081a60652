// Package guard forces test mode for any test binary that imports it, so
// binaries and workers never dial real infrastructure under go test.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CUSTOM_ACCOUNTING_TEST_MODE") == "" {
			_ = os.Setenv("CUSTOM_ACCOUNTING_TEST_MODE", "1")
		}
	})
}
