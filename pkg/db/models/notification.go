package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to a party
// (worker, driver or farmer).
type Notification struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartyID    uuid.UUID              `gorm:"column:party_id;type:uuid;not null"`
	OrderID    *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	Type       enums.NotificationType `gorm:"column:type;type:text;not null"`
	TemplateID string                 `gorm:"column:template_id;not null"`
	Variables  json.RawMessage        `gorm:"column:variables;type:jsonb"`
	SentAt     *time.Time             `gorm:"column:sent_at"`
	ReadAt     *time.Time             `gorm:"column:read_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
