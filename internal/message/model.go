// File: internal/message/model.go
package message

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a listing-scoped conversation. System messages are
// generated by the engine (for example the post-sale rating prompt) and carry
// IsSystem=true.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ListingID  uuid.UUID `gorm:"type:uuid;not null;index:idx_message_listing" json:"listing_id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	IsSystem   bool      `gorm:"not null;default:false" json:"is_system"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_message_listing" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Message) TableName() string {
	return "messages"
}

// --- DTOs ---

type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" binding:"required"`
	Body       string    `json:"body" binding:"required,min=1,max=4000"`
}
