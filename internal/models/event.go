package models

import "time"

// Product event types, used as AMQP routing keys.
const (
	EventProductCreated       = "product.created"
	EventProductUpdated       = "product.updated"
	EventProductDeleted       = "product.deleted"
	EventProductImageOrphaned = "product.image_orphaned"
)

// ProductEvent describes a change to the catalog.
type ProductEvent struct {
	Type          string    `json:"type"`
	Product       *Product  `json:"product,omitempty"`
	PreviousImage string    `json:"previousImage,omitempty"`
	OrphanedImage string    `json:"orphanedImage,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}
