package orders

import (
	"fmt"
	"time"
)

// Order numbers are customer-facing ("MRN250901042"). The three digit
// suffix is random, so the service retries on the rare same-day collision.
const maxOrderNumberAttempts = 5

// FormatOrderNumber renders an order number for the given day and suffix.
func FormatOrderNumber(now time.Time, suffix int) string {
	return fmt.Sprintf("MRN%s%03d", now.Format("060102"), suffix%1000)
}
