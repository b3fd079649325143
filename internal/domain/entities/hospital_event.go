package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// HospitalEventType represents the type of hospital event
type HospitalEventType string

const (
	HospitalEventTypeStatusUpdate   HospitalEventType = "status_update"
	HospitalEventTypeCapacityUpdate HospitalEventType = "capacity_update"
	HospitalEventTypeReferralMade   HospitalEventType = "referral_made"
)

// HospitalEvent represents a real-time update event for a hospital
type HospitalEvent struct {
	ID            string                 `json:"id"`
	HospitalID    string                 `json:"hospital_id"`
	EventType     HospitalEventType      `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields,omitempty"`
}

// NewHospitalEvent creates a new hospital event
func NewHospitalEvent(hospitalID string, eventType HospitalEventType, changedFields map[string]interface{}) *HospitalEvent {
	return &HospitalEvent{
		ID:            generateEventID(),
		HospitalID:    hospitalID,
		EventType:     eventType,
		Timestamp:     time.Now(),
		ChangedFields: changedFields,
	}
}

// generateEventID generates a unique event ID
func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

// randomString generates a random string of specified length
func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based if crypto/rand fails
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
