package capture

import (
	"fmt"
	"time"
)

// NewFolio generates a registration folio of the form REG-YYYYMMDD-#####,
// where the suffix is the last five digits of the current Unix time in
// milliseconds. The backend enforces folio uniqueness; on a collision the
// station simply generates a fresh folio and retries.
func NewFolio(now time.Time) string {
	ms := now.UnixMilli()
	return fmt.Sprintf("REG-%s-%05d", now.Format("20060102"), ms%100000)
}
