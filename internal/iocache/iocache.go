// Package iocache provides durable storage for API responses and run history.
package iocache

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/schema"
)

// CacheStoreManager manages the response cache and run-history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	responses    contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetResponseStore returns the response CacheStore.
func (mgr *CacheStoreManager) GetResponseStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.responses
}

// GetRunStore returns the run-history RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName rejects table names that could smuggle SQL into
// interpolated queries.
func validateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %q", name)
	}
	return nil
}

// quoteTableName quotes a table name with the backend's identifier syntax.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`"%s"`, name)
	default: // SQLite
		return fmt.Sprintf(`"%s"`, name)
	}
}
