package drop

import (
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/narration"
)

// Dialogue finds the line for moment: the guardian's own line as dialogue,
// else the default line as narration.
func (e Engine) Dialogue(act catalog.Activity, guardianID string, moment catalog.Moment) (narration.Beat, bool) {
	if text := act.Dialogue[guardianID][moment]; text != "" {
		return narration.Say(e.Catalog.GuardianName(guardianID), text), true
	}
	if text := act.Dialogue[catalog.DefaultSpeaker][moment]; text != "" {
		return narration.Narrate(text), true
	}
	return narration.Beat{}, false
}

func (e Engine) appendDialogue(beats []narration.Beat, act catalog.Activity, guardianID string, moment catalog.Moment) []narration.Beat {
	if b, ok := e.Dialogue(act, guardianID, moment); ok {
		beats = append(beats, b)
	}
	return beats
}
