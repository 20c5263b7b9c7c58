package model

import "time"

// PendingCode is a short-lived 4-digit pairing code waiting to be exchanged
// by a second device. BoundPairID is set exactly once, when the exchange
// succeeds; the code then lingers for a short grace window so the owning
// device's status poll can observe the transition before the code is swept.
type PendingCode struct {
	Code          string     `json:"code"`
	OwnerDeviceID string     `json:"ownerDeviceId"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	BoundPairID   *string    `json:"boundPairId,omitempty"`
	BoundAt       *time.Time `json:"boundAt,omitempty"`
}

func (c *PendingCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c *PendingCode) Bound() bool {
	return c.BoundPairID != nil
}

// Pair binds exactly two distinct devices. Immutable after creation;
// the only lifecycle transition left is destruction via unpair.
type Pair struct {
	ID        string    `json:"pairId"`
	DeviceA   string    `json:"deviceA"`
	DeviceB   string    `json:"deviceB"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p *Pair) HasMember(deviceID string) bool {
	return deviceID == p.DeviceA || deviceID == p.DeviceB
}

// PartnerOf returns the other member of the pair. The second return is
// false when deviceID is not a member at all.
func (p *Pair) PartnerOf(deviceID string) (string, bool) {
	switch deviceID {
	case p.DeviceA:
		return p.DeviceB, true
	case p.DeviceB:
		return p.DeviceA, true
	default:
		return "", false
	}
}
