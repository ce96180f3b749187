package drop

import (
	"maps"
	"slices"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/narration"
	"shiplife/internal/domain/progression"
)

type Phase string

const (
	// PhaseAwaitingChoice waits for engage or avoid on the current activity.
	PhaseAwaitingChoice Phase = "awaiting_choice"
	// PhaseDetected waits for engage or flee after a detected avoid.
	PhaseDetected Phase = "detected"
	// PhaseExtraction has a reason set and waits for Extract.
	PhaseExtraction Phase = "extraction"
	PhaseFinished   Phase = "finished"
)

type Choice string

const (
	ChoiceEngage Choice = "engage"
	ChoiceAvoid  Choice = "avoid"
	ChoiceFlee   Choice = "flee"
)

const (
	ReasonMaxActivities = "Max activities reached"
	ReasonInventoryFull = "Inventory full"
	ReasonDowned        = "Downed"
	ReasonCompleted     = "Completed exploration"
)

const (
	// SlotCap is how many new-item slots one drop may fill.
	SlotCap = 20
	// StackSize is how many units of one item share a slot.
	StackSize = 3
)

// Session is one expedition. It lives only until extraction; its only
// durable trace is what it already folded into the state.
type Session struct {
	ID                string             `json:"id"`
	LocationID        string             `json:"location_id"`
	LocationName      string             `json:"location_name"`
	GuardianID        string             `json:"guardian_id"`
	Activities        []catalog.Activity `json:"-"`
	Cursor            int                `json:"cursor"`
	ActivityCounter   int                `json:"activity_counter"`
	MaxActivities     int                `json:"max_activities"`
	Collected         map[string]int     `json:"-"`
	Phase             Phase              `json:"phase"`
	Reason            string             `json:"extraction_reason,omitempty"`
	Downed            bool               `json:"downed"`
}

// Current is the activity awaiting a choice, nil once extraction triggers.
func (s *Session) Current() *catalog.Activity {
	if s.Phase != PhaseAwaitingChoice && s.Phase != PhaseDetected {
		return nil
	}
	if s.Cursor >= len(s.Activities) {
		return nil
	}
	a := s.Activities[s.Cursor]
	return &a
}

// Choices lists what the current phase accepts.
func (s *Session) Choices() []Choice {
	switch s.Phase {
	case PhaseAwaitingChoice:
		return []Choice{ChoiceEngage, ChoiceAvoid}
	case PhaseDetected:
		return []Choice{ChoiceEngage, ChoiceFlee}
	default:
		return nil
	}
}

func (s *Session) accepts(c Choice) bool {
	return slices.Contains(s.Choices(), c)
}

func (s *Session) collect(loot []progression.ItemQuantity) {
	if s.Collected == nil {
		s.Collected = map[string]int{}
	}
	for _, l := range loot {
		if l.Quantity > 0 {
			s.Collected[l.Item] += l.Quantity
		}
	}
}

// Gains lists the loot this drop collected, sorted by item id. Inventory
// changes made outside the drop are not included.
func (s *Session) Gains() []progression.ItemQuantity {
	var out []progression.ItemQuantity
	for _, id := range slices.Sorted(maps.Keys(s.Collected)) {
		if q := s.Collected[id]; q > 0 {
			out = append(out, progression.ItemQuantity{Item: id, Quantity: q})
		}
	}
	return out
}

// SlotsUsed counts ceil(q/StackSize) over this drop's gains.
func (s *Session) SlotsUsed() int {
	used := 0
	for _, g := range s.Gains() {
		used += (g.Quantity + StackSize - 1) / StackSize
	}
	return used
}

// Step is what one transition revealed and what the session waits for next.
type Step struct {
	Beats    []narration.Beat  `json:"beats"`
	Phase    Phase             `json:"phase"`
	Activity *catalog.Activity `json:"activity,omitempty"`
	Choices  []Choice          `json:"choices,omitempty"`
	Reason   string            `json:"extraction_reason,omitempty"`
}

// Results is the extraction summary. A downed drop recovers nothing.
type Results struct {
	SessionID    string                     `json:"session_id"`
	LocationID   string                     `json:"location_id"`
	LocationName string                     `json:"location_name"`
	Reason       string                     `json:"reason"`
	Downed       bool                       `json:"downed"`
	Recovered    []progression.ItemQuantity `json:"recovered"`
	Beats        []narration.Beat           `json:"beats"`
}
