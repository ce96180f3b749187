package loadouts

type Slot struct {
	ItemID string `json:"item_id,omitempty"`
	Name   string `json:"name,omitempty"`
}

type Summary struct {
	GuardianID   string  `json:"guardian_id"`
	GuardianName string  `json:"guardian_name"`
	Equipment    *Slot   `json:"equipment"`
	Aspects      []*Slot `json:"aspects"`
}

type EquipRequest struct {
	GuardianID string
	ItemID     string
	SlotType   string
	SlotIndex  int
}

type UnequipRequest struct {
	GuardianID string
	SlotType   string
	SlotIndex  int
}

type ChangeResponse struct {
	Loadout  Summary `json:"loadout"`
	Previous string  `json:"previous,omitempty"`
}
