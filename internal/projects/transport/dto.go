package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListProjectsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=planned in_progress completed cancelled"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=planned in_progress completed cancelled"`
}

type ProjectResponse struct {
	ID             uuid.UUID       `json:"id"`
	QuoteID        uuid.UUID       `json:"quoteId"`
	ClientID       *uuid.UUID      `json:"clientId,omitempty"`
	Title          string          `json:"title"`
	ContractAmount decimal.Decimal `json:"contractAmount"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type ProjectListResponse struct {
	Items      []ProjectResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
