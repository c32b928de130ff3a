package repo_test

import (
	"os"
	"testing"

	"github.com/pkordes/trip-companion/backend/testutil"
)

// TestMain brings the test database to the latest schema once per binary.
func TestMain(m *testing.M) {
	os.Exit(testutil.RunWithSchema(m))
}
