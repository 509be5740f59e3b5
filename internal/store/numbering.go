package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const complaintNumberPrefix = "CMP"

// NewComplaintNumber returns CMP<YYYYMMDD><8 upper-case hex chars>.
func NewComplaintNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return complaintNumberPrefix + at.Format("20060102") + suffix
}
