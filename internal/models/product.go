package models

import "time"

// Product statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Product represents a catalog entry.
type Product struct {
	ID          string    `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Title       string    `json:"title" bson:"title" gorm:"not null" validate:"required,notblank"`
	Description string    `json:"description" bson:"description" gorm:"not null" validate:"required,notblank"`
	Status      string    `json:"status" bson:"status" gorm:"type:varchar(16);not null" validate:"required,oneof=active inactive"`
	Date        string    `json:"date" bson:"date" gorm:"type:varchar(10);not null" validate:"required,datetime=2006-01-02"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ProductInput holds the scalar fields submitted when creating a product.
type ProductInput struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Status      string `json:"status" form:"status"`
	Date        string `json:"date" form:"date"`
}

// ProductPatch holds the scalar fields of an update. A nil field keeps the
// stored value.
type ProductPatch struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
	Status      *string `json:"status" form:"status"`
	Date        *string `json:"date" form:"date"`
}

// Empty reports whether the patch carries no scalar field at all.
func (p ProductPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Date == nil
}

// ApplyTo merges the present fields into product.
func (p ProductPatch) ApplyTo(product *Product) {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Status != nil {
		product.Status = *p.Status
	}
	if p.Date != nil {
		product.Date = *p.Date
	}
}

// ImageUpload is a validated image held in memory for the lifetime of a request.
type ImageUpload struct {
	Filename string
	MIMEType string
	Data     []byte
}
