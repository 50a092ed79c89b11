package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Product is one catalog record. ID is the sole join key used by image
// overrides and order line items and never changes after creation.
type Product struct {
	ID        string            `json:"id" gorm:"primaryKey;type:text"`
	Name      datatypes.JSONMap `json:"name" gorm:"type:jsonb;not null"`
	Price     float64           `json:"price" gorm:"not null"`
	Image     string            `json:"image" gorm:"type:text;not null"`
	Gallery   datatypes.JSON    `json:"gallery,omitempty" gorm:"type:jsonb"`
	Category  string            `json:"category" gorm:"type:text;not null;index"`
	InStock   bool              `json:"in_stock" gorm:"not null;default:true"`
	Rating    float64           `json:"rating" gorm:"not null;default:0"`
	Reviews   int               `json:"reviews" gorm:"not null;default:0"`
	Organic   bool              `json:"organic" gorm:"not null;default:false"`
	Unit      string            `json:"unit" gorm:"type:text;not null"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

// LocalizedName returns the display name for locale, falling back to the
// given default locale and then to any value present.
func (p Product) LocalizedName(locale, fallback string) string {
	if v, ok := p.Name[locale].(string); ok && v != "" {
		return v
	}
	if v, ok := p.Name[fallback].(string); ok && v != "" {
		return v
	}
	for _, v := range p.Name {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return p.ID
}

// Patch is a partial field set merged into targeted products. Nil fields are
// left untouched. The primitive accepts any combination; the bulk-edit
// workflow restricts patches to a single field and validates values.
type Patch struct {
	Price    *float64
	InStock  *bool
	Category *string
}

func (p Patch) IsEmpty() bool {
	return p.Price == nil && p.InStock == nil && p.Category == nil
}

// Apply merges the patch into a product, returning the updated copy.
func (p Patch) Apply(product Product, now time.Time) Product {
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.InStock != nil {
		product.InStock = *p.InStock
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	product.UpdatedAt = now
	return product
}

// Fields returns the patch as column→value pairs for persistence.
func (p Patch) Fields(now time.Time) map[string]any {
	fields := make(map[string]any, 4)
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.InStock != nil {
		fields["in_stock"] = *p.InStock
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	fields["updated_at"] = now
	return fields
}
