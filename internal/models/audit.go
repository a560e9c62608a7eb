// internal/models/audit.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action     string     `json:"action" gorm:"size:100;not null;index"`
	EntityType string     `json:"entity_type" gorm:"size:50;not null;index"`
	EntityID   string     `json:"entity_id" gorm:"size:64;index"`
	Details    JSONB      `json:"details" gorm:"type:jsonb"`
	CreatedAt  time.Time  `json:"created_at" gorm:"index"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type ErrorLog struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	Path      string     `json:"path" gorm:"size:255;index"`
	Method    string     `json:"method" gorm:"size:50"`
	UserID    *uuid.UUID `json:"user_id" gorm:"type:uuid"`
	Details   JSONB      `json:"details" gorm:"type:jsonb"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

type SecurityEvent struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventType string     `json:"event_type" gorm:"size:50;not null;index"`
	Severity  string     `json:"severity" gorm:"size:20;not null;default:'info'"`
	UserID    *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	IPAddress string     `json:"ip_address" gorm:"size:45"`
	UserAgent string     `json:"user_agent" gorm:"type:text"`
	Details   JSONB      `json:"details" gorm:"type:jsonb"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}
