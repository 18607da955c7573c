package enums

import "fmt"

// ProductCategory groups catalog products by craft.
type ProductCategory string

const (
	ProductCategoryPottery    ProductCategory = "pottery"
	ProductCategoryTextiles   ProductCategory = "textiles"
	ProductCategoryJewelry    ProductCategory = "jewelry"
	ProductCategoryWoodwork   ProductCategory = "woodwork"
	ProductCategoryMetalcraft ProductCategory = "metalcraft"
	ProductCategoryPaintings  ProductCategory = "paintings"
)

var validProductCategories = []ProductCategory{
	ProductCategoryPottery,
	ProductCategoryTextiles,
	ProductCategoryJewelry,
	ProductCategoryWoodwork,
	ProductCategoryMetalcraft,
	ProductCategoryPaintings,
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

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
