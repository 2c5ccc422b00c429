package domain

import "time"

// SlotInfo fixes a meter's display name and grid role. The deployment
// has exactly four physical meters; the mapping is static and unknown
// IDs never create new slots.
type SlotInfo struct {
	Name string
	Role MeterRole
}

var meterSlots = map[string]SlotInfo{
	"A-001": {Name: "Street Input", Role: RoleStreetInput},
	"A-003": {Name: "Orangzaib", Role: RoleHouse},
	"A-004": {Name: "Maliha Bibi", Role: RoleHouse},
	"A-005": {Name: "To Next Street", Role: RoleToNext},
}

// slotOrder is the role-assignment order used for deterministic
// listing and aggregation: street input, houses, next street.
var slotOrder = []string{"A-001", "A-003", "A-004", "A-005"}

// LookupSlot resolves a meter ID against the fixed slot table.
func LookupSlot(meterID string) (SlotInfo, bool) {
	info, ok := meterSlots[meterID]
	return info, ok
}

// SlotOrder returns the fixed meter IDs in role-assignment order.
func SlotOrder() []string {
	out := make([]string, len(slotOrder))
	copy(out, slotOrder)
	return out
}

// DefaultMeters returns the four zeroed, offline meter rows used to
// seed the store at startup.
func DefaultMeters(now time.Time) []Meter {
	out := make([]Meter, 0, len(slotOrder))
	for _, id := range slotOrder {
		info := meterSlots[id]
		out = append(out, Meter{
			MeterID:     id,
			Name:        info.Name,
			Role:        info.Role,
			Status:      StatusOffline,
			LastUpdated: now,
		})
	}
	return out
}
