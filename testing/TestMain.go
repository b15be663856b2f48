// Package testing puts the process into ContractHub test mode. Test packages
// import it for its side effect so that configuration loads without a real
// environment and `serve` never binds a port.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

// forced is always applied; defaults only fill variables the caller left unset.
var (
	forced    = map[string]string{"CONTRACTHUB_TEST_MODE": "1"}
	defaults  = map[string]string{"JWT_SECRET": "test-secret-0123456789"}
	applyOnce sync.Once
)

func applyTestEnv() {
	applyOnce.Do(func() {
		for key, value := range forced {
			_ = os.Setenv(key, value)
		}
		for key, value := range defaults {
			if _, ok := os.LookupEnv(key); !ok {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	applyTestEnv()
}

// TestMain lets a package delegate its own TestMain here.
func TestMain(m *stdtesting.M) {
	applyTestEnv()
	os.Exit(m.Run())
}
