package registry

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns an identifier made of the base-36 millisecond timestamp
// and a short random suffix.
func NewID(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return ts + "-" + suffix
}
