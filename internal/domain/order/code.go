package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewCode returns a unique, human-readable order code. The timestamp prefix
// keeps codes roughly sortable and easy to read over the phone; the UUID
// fragment guarantees uniqueness within a second.
func NewCode(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102-150405"), suffix)
}
