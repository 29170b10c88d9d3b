// Package model defines domain types used by the service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item as returned by the commerce platform.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
}

// Variant is read-only in the pipeline and only carried for reporting.
type Variant struct {
	ID        string          `json:"id"`
	Price     decimal.Decimal `json:"price"`
	Barcode   string          `json:"barcode"`
	CreatedAt time.Time       `json:"createdAt"`
}

// GenerationRequest pairs a product title with the style prompt sent upstream.
type GenerationRequest struct {
	Title       string
	StylePrompt string
}

// UpdateOutcome is a product whose description was written. Failures abort
// the batch and are returned as errors, never as outcomes.
type UpdateOutcome struct {
	ProductID   string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// UserError is a validation error reported inside a successful write response.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UpdatedProduct is the product echoed back by the write API.
type UpdatedProduct struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ProductUpdate is the write API response payload.
type ProductUpdate struct {
	Product    *UpdatedProduct `json:"product"`
	UserErrors []UserError     `json:"userErrors"`
}

// RunResult is the terminal artifact of a successful pipeline run.
type RunResult struct {
	Products []UpdateOutcome `json:"products"`
	Message  string          `json:"message"`
}
