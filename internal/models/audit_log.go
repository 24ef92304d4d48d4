package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types for audit logging
const (
	AuditEventTypeListingCreate   = "listing_create"
	AuditEventTypeListingUpdate   = "listing_update"
	AuditEventTypeListingDelete   = "listing_delete"
	AuditEventTypeListingFeature  = "listing_feature"
	AuditEventTypeListingUnfeat   = "listing_unfeature"
	AuditEventTypeModeration      = "listing_moderation"
	AuditEventTypePlanChange      = "plan_change"
	AuditEventTypeQuotaDenied     = "quota_denied"
	AuditEventTypeFeaturedExpired = "featured_expired"
)

// Resource types
const (
	AuditResourceTypeListing = "listing"
	AuditResourceTypeUser    = "user"
)

// Actions
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

type AuditLog struct {
	ID            uuid.UUID     `json:"id"`
	EventType     string        `json:"event_type"`
	ActorID       *uuid.UUID    `json:"actor_id,omitempty"`
	TargetID      *uuid.UUID    `json:"target_id,omitempty"`
	ResourceType  *string       `json:"resource_type,omitempty"`
	ResourceID    *string       `json:"resource_id,omitempty"`
	Action        string        `json:"action"`
	Success       bool          `json:"success"`
	FailureReason *string       `json:"failure_reason,omitempty"`
	IPAddress     *string       `json:"ip_address,omitempty"`
	Metadata      AuditMetadata `json:"metadata"`
	CreatedAt     time.Time     `json:"created_at"`
}

// AuditMetadata holds additional context for audit events
type AuditMetadata map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (am *AuditMetadata) Scan(value interface{}) error {
	if value == nil {
		*am = make(AuditMetadata)
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*am = AuditMetadata(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (am AuditMetadata) Value() (driver.Value, error) {
	if am == nil {
		return nil, nil
	}
	return json.Marshal(map[string]interface{}(am))
}

// NewQuotaDeniedMetadata builds metadata for a quota_denied audit entry.
func NewQuotaDeniedMetadata(d Decision) AuditMetadata {
	return AuditMetadata{
		"action": string(d.Action),
		"tier":   d.Tier,
		"reason": d.Reason,
		"limit":  d.Limit,
		"used":   d.Used,
	}
}

// NewStatusChangeMetadata builds metadata for a moderation or plan change entry.
func NewStatusChangeMetadata(from, to string) AuditMetadata {
	return AuditMetadata{
		"from": from,
		"to":   to,
	}
}

// Audit log paging bounds
const (
	AuditDefaultPageSize = 50
	AuditMaxPageSize     = 200
)

// AuditLogFilter narrows an audit log listing. Zero values mean no restriction.
type AuditLogFilter struct {
	EventType string
	ActorID   *uuid.UUID
	Limit     int
	Offset    int
}

// Normalize clamps Limit into [1, AuditMaxPageSize] and Offset to >= 0.
func (f AuditLogFilter) Normalize() AuditLogFilter {
	switch {
	case f.Limit < 1:
		f.Limit = AuditDefaultPageSize
	case f.Limit > AuditMaxPageSize:
		f.Limit = AuditMaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
