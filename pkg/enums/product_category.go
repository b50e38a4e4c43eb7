package enums

import "fmt"

// ProductCategory classifies catalog listings.
type ProductCategory string

const (
	ProductCategoryBajuMuslimah    ProductCategory = "baju-muslimah"
	ProductCategoryHampers         ProductCategory = "hampers"
	ProductCategoryKue             ProductCategory = "kue"
	ProductCategoryRamadhanLebaran ProductCategory = "ramadhan-lebaran"
	ProductCategoryAksesoris       ProductCategory = "aksesoris"
	ProductCategoryLainnya         ProductCategory = "lainnya"
)

var validProductCategories = []ProductCategory{
	ProductCategoryBajuMuslimah,
	ProductCategoryHampers,
	ProductCategoryKue,
	ProductCategoryRamadhanLebaran,
	ProductCategoryAksesoris,
	ProductCategoryLainnya,
}

// skuPrefixes maps each category to the prefix used when generating SKUs.
var skuPrefixes = map[ProductCategory]string{
	ProductCategoryBajuMuslimah:    "BM",
	ProductCategoryHampers:         "HP",
	ProductCategoryKue:             "KU",
	ProductCategoryRamadhanLebaran: "RL",
	ProductCategoryAksesoris:       "AK",
	ProductCategoryLainnya:         "LN",
}

// String implements fmt.Stringer.
func (p ProductCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductCategory.
func (p ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// SKUPrefix returns the two-letter prefix used for generated SKUs.
func (p ProductCategory) SKUPrefix() string {
	if prefix, ok := skuPrefixes[p]; ok {
		return prefix
	}
	return "PR"
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
