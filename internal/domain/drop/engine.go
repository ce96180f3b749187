package drop

import (
	"log/slog"
	"strconv"
	"strings"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/narration"
	"shiplife/internal/domain/progression"
	"shiplife/internal/domain/rolls"
	"shiplife/internal/domain/rules"
)

// Engine runs drops. Every roll and state change of a transition completes
// before the beats describing it are returned.
type Engine struct {
	Catalog *catalog.Catalog
	RNG     rolls.RNG
	Logger  *slog.Logger
}

func (e Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e Engine) roller() rolls.Engine {
	return rolls.Engine{Catalog: e.Catalog, RNG: e.RNG, Logger: e.Logger}
}

// Begin lands guardianID at locationID, spawns the activity list and runs up
// to the first choice.
func (e Engine) Begin(state *progression.State, locationID, guardianID string) (Session, Step, error) {
	loc, ok := e.Catalog.Location(locationID)
	if !ok {
		return Session{}, Step{}, rules.Reject(rules.CodeUnknownLocation, "location %s not found", locationID)
	}
	if st := Unlock(loc, *state); !st.Unlocked {
		rej := rules.Reject(rules.CodeLocationLocked, "%s is locked", loc.Name)
		rej.Missing = st.Missing
		return Session{}, Step{}, rej
	}
	if _, ok := e.Catalog.Guardian(guardianID); !ok {
		return Session{}, Step{}, rules.Reject(rules.CodeUnknownGuardian, "guardian %s not found", guardianID)
	}
	activities := e.Spawn(loc)
	if len(activities) == 0 && len(e.Catalog.Activities) == 0 {
		return Session{}, Step{}, rules.Reject(rules.CodeNoActivities, "no activities to spawn at %s", loc.Name)
	}
	s, step := e.open(state, loc, guardianID, activities)
	return s, step, nil
}

func (e Engine) open(state *progression.State, loc catalog.Location, guardianID string, activities []catalog.Activity) (Session, Step) {
	s := Session{
		LocationID:        loc.ID,
		LocationName:      loc.Name,
		GuardianID:        guardianID,
		Activities:        activities,
		MaxActivities:     loc.MaxActivities,
		Collected:         map[string]int{},
	}
	state.ActiveGuardian = guardianID
	beats := []narration.Beat{
		narration.Narrate("The dropship descends toward " + loc.Name + "."),
		narration.Narrate("The hatch opens. You step out into unknown territory."),
	}
	e.logger().Info("drop started", "location_id", loc.ID, "guardian_id", guardianID, "activities", len(activities))
	return s, e.advance(state, &s, beats)
}

// Spawn rolls the activity count from the spawn range, fills the common
// slots by type distribution and the rest with uncommon or rare picks, then
// shuffles the result.
func (e Engine) Spawn(loc catalog.Location) []catalog.Activity {
	r := e.roller()
	n := rolls.Between(e.RNG, loc.ActivitySpawnRange.Min, loc.ActivitySpawnRange.Max)
	split := rolls.RollRarityDistribution(n)

	out := make([]catalog.Activity, 0, n)
	for i := 0; i < split.Common; i++ {
		if a, ok := r.SelectActivity(r.RollType(loc.ActivityTypeDistribution), catalog.RarityCommon); ok {
			out = append(out, a)
		}
	}
	for i := 0; i < split.RareOrUncommon; i++ {
		tier := r.RollRarityTier()
		if a, ok := r.SelectActivity(r.RollType(loc.ActivityTypeDistribution), tier); ok {
			out = append(out, a)
		}
	}
	rolls.Shuffle(e.RNG, out)
	e.logger().Debug("activities spawned", "location_id", loc.ID, "count", n, "common", split.Common, "rare_or_uncommon", split.RareOrUncommon)
	return out
}

// Choose resolves the player's choice on the current activity and runs to
// the next choice or to extraction.
func (e Engine) Choose(state *progression.State, s *Session, c Choice) (Step, error) {
	if s.Phase == PhaseExtraction || s.Phase == PhaseFinished {
		return Step{}, rules.Reject(rules.CodeDropFinished, "drop is already over")
	}
	if !s.accepts(c) {
		return Step{}, rules.Reject(rules.CodeInvalidChoice, "%q is not a valid choice while %s", c, s.Phase)
	}
	act := s.Activities[s.Cursor]
	beats := []narration.Beat{narration.Choice("You chose to " + titleCase(string(c)))}

	switch c {
	case ChoiceEngage:
		return e.engage(state, s, act, beats), nil
	case ChoiceAvoid:
		beats = append(beats, narration.Narrate("You attempt to avoid the encounter..."))
		if !rolls.RollPercent(e.RNG, act.DetectionRisk) {
			beats = append(beats, narration.System("You slip past undetected."))
			s.Cursor++
			return e.advance(state, s, beats), nil
		}
		beats = append(beats, narration.System("The "+act.Name+" detects your presence!"))
		s.ActivityCounter++
		s.Phase = PhaseDetected
		return e.waiting(s, beats), nil
	default:
		beats = append(beats, narration.Narrate("You attempt to escape..."))
		if rolls.RollPercent(e.RNG, act.FleeChance) {
			beats = append(beats, narration.System("You successfully escape!"))
			s.Cursor++
			return e.advance(state, s, beats), nil
		}
		beats = append(beats, narration.System("Your escape is blocked! You must fight!"))
		return e.engage(state, s, act, beats), nil
	}
}

func (e Engine) engage(state *progression.State, s *Session, act catalog.Activity, beats []narration.Beat) Step {
	beats = e.appendDialogue(beats, act, s.GuardianID, catalog.MomentEngage)
	rate := rolls.CalculateSuccessRate(e.Catalog, *state, []string{s.GuardianID}, act)
	roll := e.RNG.Float64() * 100
	success := roll <= float64(rate.Final)
	e.logger().Debug("activity roll", "activity_id", act.ID, "roll", roll, "final_rate", rate.Final, "success", success)

	if success {
		beats = e.appendDialogue(beats, act, s.GuardianID, catalog.MomentSuccess)
		loot := rolls.RollRewards(e.RNG, act.LootTable, 1)
		state.AddAll(loot)
		s.collect(loot)
		state.RecordActivityCompleted(act.ID)
		beats = append(beats, narration.System(e.lootLine(loot)))
		s.ActivityCounter++
		s.Cursor++
		return e.advance(state, s, beats)
	}

	if rolls.RollPercent(e.RNG, act.DownRisk) {
		beats = e.appendDialogue(beats, act, s.GuardianID, catalog.MomentDowned)
		s.Downed = true
		e.revertGains(state, s)
		return e.trigger(s, ReasonDowned, beats)
	}
	beats = e.appendDialogue(beats, act, s.GuardianID, catalog.MomentFail)
	beats = append(beats, narration.System("No resources collected."))
	s.ActivityCounter++
	s.Cursor++
	return e.advance(state, s, beats)
}

// advance runs the extraction checks, then presents the next activity.
func (e Engine) advance(state *progression.State, s *Session, beats []narration.Beat) Step {
	if reason := e.ExtractionReason(*state, s); reason != "" {
		return e.trigger(s, reason, beats)
	}
	if s.Cursor >= len(s.Activities) {
		return e.trigger(s, ReasonCompleted, beats)
	}
	s.Phase = PhaseAwaitingChoice
	beats = e.appendDialogue(beats, s.Activities[s.Cursor], s.GuardianID, catalog.MomentInitiate)
	return e.waiting(s, beats)
}

// ExtractionReason reports a triggered extraction other than exhaustion.
// Downed pre-empts the other checks.
func (e Engine) ExtractionReason(state progression.State, s *Session) string {
	switch {
	case s.Downed:
		return ReasonDowned
	case s.ActivityCounter >= s.MaxActivities:
		return ReasonMaxActivities
	case s.SlotsUsed() >= SlotCap:
		return ReasonInventoryFull
	}
	return ""
}

func (e Engine) trigger(s *Session, reason string, beats []narration.Beat) Step {
	s.Phase = PhaseExtraction
	s.Reason = reason
	beats = append(beats, narration.Beat{
		Kind:  narration.KindExtraction,
		Text:  "EXTRACTION TRIGGERED: " + strings.ToUpper(reason),
		Delay: narration.DefaultDelay,
	})
	e.logger().Info("extraction triggered", "location_id", s.LocationID, "reason", reason, "activity_counter", s.ActivityCounter)
	return Step{Beats: beats, Phase: s.Phase, Reason: reason}
}

func (e Engine) waiting(s *Session, beats []narration.Beat) Step {
	return Step{Beats: beats, Phase: s.Phase, Activity: s.Current(), Choices: s.Choices()}
}

// Extract finalizes a triggered extraction and folds it into the drop
// counters. It succeeds once per session.
func (e Engine) Extract(state *progression.State, s *Session) (Results, error) {
	switch s.Phase {
	case PhaseFinished:
		return Results{}, rules.Reject(rules.CodeDropFinished, "drop already extracted")
	case PhaseExtraction:
	default:
		return Results{}, rules.Reject(rules.CodeInvalidChoice, "extraction has not been triggered")
	}
	state.RecordDrop(s.Downed)
	s.Phase = PhaseFinished

	res := Results{
		SessionID:    s.ID,
		LocationID:   s.LocationID,
		LocationName: s.LocationName,
		Reason:       s.Reason,
		Downed:       s.Downed,
		Recovered:    []progression.ItemQuantity{},
	}
	if s.Downed {
		res.Beats = []narration.Beat{
			narration.System("Guardian was downed and lost all collected resources"),
			narration.System("No resources recovered"),
		}
	} else {
		if gains := s.Gains(); len(gains) > 0 {
			res.Recovered = gains
		}
		res.Beats = []narration.Beat{narration.System("Successfully extracted from " + s.LocationName)}
	}
	e.logger().Info("drop extracted", "location_id", s.LocationID, "reason", s.Reason, "downed", s.Downed, "recovered", len(res.Recovered))
	return res, nil
}

// revertGains takes back everything this drop collected and nothing else.
func (e Engine) revertGains(state *progression.State, s *Session) {
	for _, g := range s.Gains() {
		state.RemoveUpTo(g.Item, g.Quantity)
	}
	clear(s.Collected)
}

func (e Engine) lootLine(loot []progression.ItemQuantity) string {
	if len(loot) == 0 {
		return "No resources collected."
	}
	parts := make([]string, 0, len(loot))
	for _, l := range loot {
		parts = append(parts, e.Catalog.ItemName(l.Item)+" x"+strconv.Itoa(l.Quantity))
	}
	return "Resources collected: " + strings.Join(parts, ", ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
