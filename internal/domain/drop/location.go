package drop

import (
	"fmt"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
)

type LocationStatus struct {
	Location catalog.Location `json:"location"`
	Unlocked bool             `json:"unlocked"`
	Missing  []string         `json:"missing,omitempty"`
}

// Unlock checks a location's unlock requirements. Unlocked locations pass
// without looking at progress.
func Unlock(loc catalog.Location, state progression.State) LocationStatus {
	st := LocationStatus{Location: loc, Unlocked: true}
	if !loc.Locked {
		return st
	}
	req := loc.UnlockRequirements
	prog := state.Progression
	if req.DropCount > 0 && prog.SuccessfulDrops < req.DropCount {
		st.Missing = append(st.Missing, fmt.Sprintf("Complete %d successful drops (%d/%d)", req.DropCount, prog.SuccessfulDrops, req.DropCount))
	}
	if req.ActivitiesCompleted > 0 && prog.ActivitiesTotal < req.ActivitiesCompleted {
		st.Missing = append(st.Missing, fmt.Sprintf("Complete %d total activities (%d/%d)", req.ActivitiesCompleted, prog.ActivitiesTotal, req.ActivitiesCompleted))
	}
	for _, id := range req.SpecificActivities {
		if prog.ActivitiesCompleted[id] == 0 {
			st.Missing = append(st.Missing, "Complete activity "+id)
		}
	}
	st.Unlocked = len(st.Missing) == 0
	return st
}

// Locations reports every catalog location with its unlock status.
func (e Engine) Locations(state progression.State) []LocationStatus {
	out := make([]LocationStatus, 0, len(e.Catalog.Locations))
	for _, loc := range e.Catalog.Locations {
		out = append(out, Unlock(loc, state))
	}
	return out
}
