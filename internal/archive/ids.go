package archive

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a unique opaque identifier: the millisecond timestamp in
// base 36 plus a random suffix. Sortable enough for humans, unique enough
// for a single-writer store.
func NewID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "_" + suffix
}
