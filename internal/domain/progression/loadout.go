package progression

import "encoding/json"

// AspectSlots is the fixed number of aspect slots per guardian.
const AspectSlots = 3

// Loadout holds item ids; an empty string is an empty slot and is written
// as null.
type Loadout struct {
	Equipment string
	Aspects   [AspectSlots]string
}

type loadoutWire struct {
	Equipment *string   `json:"equipment"`
	Aspects   []*string `json:"aspects"`
}

func (l Loadout) MarshalJSON() ([]byte, error) {
	w := loadoutWire{Equipment: nullable(l.Equipment), Aspects: make([]*string, AspectSlots)}
	for i, a := range l.Aspects {
		w.Aspects[i] = nullable(a)
	}
	return json.Marshal(w)
}

// UnmarshalJSON tolerates short or long aspect arrays; the result always has
// exactly three slots.
func (l *Loadout) UnmarshalJSON(data []byte) error {
	var w loadoutWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*l = Loadout{}
	if w.Equipment != nil {
		l.Equipment = *w.Equipment
	}
	for i := 0; i < AspectSlots && i < len(w.Aspects); i++ {
		if w.Aspects[i] != nil {
			l.Aspects[i] = *w.Aspects[i]
		}
	}
	return nil
}

// Items lists the occupied slots, equipment first.
func (l Loadout) Items() []string {
	var out []string
	if l.Equipment != "" {
		out = append(out, l.Equipment)
	}
	for _, a := range l.Aspects {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Full reports whether every slot is occupied.
func (l Loadout) Full() bool {
	if l.Equipment == "" {
		return false
	}
	for _, a := range l.Aspects {
		if a == "" {
			return false
		}
	}
	return true
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
