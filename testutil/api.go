package testutil

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"book-catalog/server"
)

// NewAPIServer starts a catalogd instance backed by a temporary SQLite
// database and returns the base URL of its collection resource. Both are
// torn down when the test completes.
func NewAPIServer(t *testing.T) (baseURL string, db *server.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := server.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("testutil.NewAPIServer: open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := httptest.NewServer(server.NewRouter(db, db, server.NewMetrics(nil), nil))
	t.Cleanup(srv.Close)
	return srv.URL + "/books", db
}
