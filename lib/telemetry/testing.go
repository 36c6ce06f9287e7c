package telemetry

import (
	"context"
	"os"
	"sync"
	"testing"
)

var (
	setupTestLock         sync.Mutex
	setupTestEnvironments = map[string]struct{}{}
)

// SetupForTesting enables debug logging and, when a telemetry.json5 can be
// found above the cwd, exports traces for the test run.
func SetupForTesting(t testing.TB, serviceName string) func() {
	setupTestLock.Lock()
	defer setupTestLock.Unlock()

	_, setupAlready := setupTestEnvironments[serviceName]
	if setupAlready {
		return func() {}
	}
	setupTestEnvironments[serviceName] = struct{}{}

	InitSlog(true)

	ctx := context.Background()
	tel, err := SetupFromEnv(ctx, serviceName)
	if os.IsNotExist(err) {
		return func() {}
	}
	if err != nil {
		t.Fatal(err)
	}
	return func() {
		err := tel.Shutdown(ctx)
		if err != nil {
			t.Fatal(err)
		}
	}
}
