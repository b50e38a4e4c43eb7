package products

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/maraneea/storefront-backend/pkg/enums"
)

var (
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9\s-]+`)
	slugSpacesRe   = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// GenerateSlug derives a URL slug from the product name.
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidRe.ReplaceAllString(slug, "")
	slug = slugSpacesRe.ReplaceAllString(slug, "-")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// GenerateSKU builds a SKU from the category prefix and the trailing six
// digits of the unix-millisecond clock.
func GenerateSKU(category enums.ProductCategory, now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}
	return fmt.Sprintf("%s-%s", category.SKUPrefix(), millis)
}
