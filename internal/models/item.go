package models

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryTops        Category = "TOPS"
	CategoryBottoms     Category = "BOTTOMS"
	CategoryDresses     Category = "DRESSES"
	CategoryOuterwear   Category = "OUTERWEAR"
	CategoryAccessories Category = "ACCESSORIES"
	CategoryShoes       Category = "SHOES"
)

var Categories = []Category{CategoryTops, CategoryBottoms, CategoryDresses, CategoryOuterwear, CategoryAccessories, CategoryShoes}

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

type Condition string

const (
	ConditionNew       Condition = "NEW"
	ConditionExcellent Condition = "EXCELLENT"
	ConditionGood      Condition = "GOOD"
	ConditionFair      Condition = "FAIR"
)

var Conditions = []Condition{ConditionNew, ConditionExcellent, ConditionGood, ConditionFair}

type Item struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Type        string    `json:"type"`
	Size        Size      `json:"size"`
	Condition   Condition `json:"condition"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	PointsValue int32     `json:"pointsValue"`
	IsApproved  bool      `json:"isApproved"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Visible reports whether the item shows up when browsing.
func (i *Item) Visible() bool {
	return i.IsApproved && i.Available
}

// ItemFilter narrows a catalog listing. Nil fields are not applied.
type ItemFilter struct {
	Category  *Category
	Size      *Size
	Condition *Condition
	Available *bool
	Approved  *bool
	OwnerID   *uuid.UUID
}
