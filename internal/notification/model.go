// File: internal/notification/model.go
package notification

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType defines the type of notification.
type NotificationType string

const (
	TypeReservation NotificationType = "reservation"
	TypeSold        NotificationType = "sold"
	TypePriceDrop   NotificationType = "price_drop"
)

// Metadata is a free-form JSON payload stored alongside a notification.
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for Metadata.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification metadata: %w", err)
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for Metadata.
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("failed to scan notification metadata: invalid type")
	}
	return json.Unmarshal(b, m)
}

// Notification represents a user notification.
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	RecipientID uuid.UUID        `gorm:"type:uuid;not null;index:idx_notification_recipient_status" json:"recipient_id"`
	ListingID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"listing_id"`
	Type        NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	Metadata    Metadata         `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsRead      bool             `gorm:"not null;default:false;index:idx_notification_recipient_status" json:"is_read"`
	CreatedAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
