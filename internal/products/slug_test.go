package products

import (
	"strings"
	"testing"
	"time"

	"github.com/maraneea/storefront-backend/pkg/enums"
)

func TestGenerateSlug(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Gamis Syari Premium", "gamis-syari-premium"},
		{"punctuation stripped", "Kue Kering (Nastar) 500g!", "kue-kering-nastar-500g"},
		{"collapsed dashes", "Hampers  --  Lebaran", "hampers-lebaran"},
		{"trimmed", "  Aksesoris  ", "aksesoris"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := GenerateSlug(tc.in); got != tc.want {
				t.Fatalf("GenerateSlug(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestGenerateSKU(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1735689123456)

	sku := GenerateSKU(enums.ProductCategoryKue, now)
	if !strings.HasPrefix(sku, "KU-") {
		t.Fatalf("expected KU- prefix, got %q", sku)
	}
	if len(sku) != len("KU-")+6 {
		t.Fatalf("expected six digit suffix, got %q", sku)
	}
	if !strings.HasSuffix(sku, "123456") {
		t.Fatalf("expected suffix from clock millis, got %q", sku)
	}

	if got := GenerateSKU(enums.ProductCategory("unknown"), now); !strings.HasPrefix(got, "PR-") {
		t.Fatalf("expected PR- fallback prefix, got %q", got)
	}
}
