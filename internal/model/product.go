package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category is one of the fixed catalog categories.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
	CategoryOther       Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryHome,
	CategorySports,
	CategoryOther,
}

// ParseCategory normalizes raw input to a Category. The second result is
// false when the value is not a known category.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	return c, c.Valid()
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a catalog entry.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string          `json:"name" gorm:"size:100;not null"`
	Description string          `json:"description" gorm:"size:1000;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null;index:idx_category_price,priority:2"`
	Category    Category        `json:"category" gorm:"size:32;not null;index:idx_category_price,priority:1"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	Image       *string         `json:"image" gorm:"size:512"`
	Slug        string          `json:"slug" gorm:"size:191;not null;uniqueIndex"`
	IsActive    bool            `json:"isActive" gorm:"not null;default:true;index"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewSlug derives the slug for a product named name created at createdAt.
// The nanosecond timestamp keeps identically named products apart.
func NewSlug(name string, createdAt time.Time) string {
	return slug.Make(fmt.Sprintf("%s-%d", name, createdAt.UnixNano()))
}

// NewProduct is the command that creates a product.
type NewProduct struct {
	Name        string          `json:"name" form:"name" validate:"required,min=2,max=100"`
	Description string          `json:"description" form:"description" validate:"required,max=1000"`
	Price       decimal.Decimal `json:"price" form:"price" validate:"gte=0"`
	Category    Category        `json:"category" form:"category" validate:"required,category"`
	Stock       int             `json:"stock" form:"stock" validate:"gte=0"`
	Image       *string         `json:"image,omitempty" form:"image" validate:"omitempty,max=512"`
}

// ProductPatch is the command that changes a subset of product fields.
// Nil fields are left untouched; the slug is never part of a patch.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty" form:"name" validate:"omitempty,min=2,max=100"`
	Description *string          `json:"description,omitempty" form:"description" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price,omitempty" form:"price" validate:"omitempty,gte=0"`
	Category    *Category        `json:"category,omitempty" form:"category" validate:"omitempty,category"`
	Stock       *int             `json:"stock,omitempty" form:"stock" validate:"omitempty,gte=0"`
	Image       *string          `json:"image,omitempty" form:"image" validate:"omitempty,max=512"`
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Category == nil && p.Stock == nil && p.Image == nil
}

// AdjustStock is the command that moves stock by Delta units.
type AdjustStock struct {
	Delta int `json:"delta" form:"delta"`
}
