package mission

import (
	"log/slog"
	"slices"
	"strconv"
	"time"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/loadout"
	"shiplife/internal/domain/narration"
	"shiplife/internal/domain/progression"
	"shiplife/internal/domain/rolls"
	"shiplife/internal/domain/rules"
	"shiplife/internal/domain/trophy"
)

const (
	// BoardSize is how many missions the board shows at once.
	BoardSize = 3
	// AnomalyChance is the per-mission chance of a rolled anomaly.
	AnomalyChance = 0.25
	MaxSquadSize  = 4
)

type Orchestrator struct {
	Catalog *catalog.Catalog
	RNG     rolls.RNG
	Logger  *slog.Logger
}

type Outcome struct {
	MissionID   string                     `json:"mission_id"`
	MissionType string                     `json:"mission_type"`
	Squad       []string                   `json:"squad"`
	Success     bool                       `json:"success"`
	Rate        rolls.SuccessRate          `json:"rate"`
	Roll        float64                    `json:"roll"`
	Rewards     []progression.ItemQuantity `json:"rewards"`
	Anomaly     *catalog.Anomaly           `json:"anomaly,omitempty"`
	NewTrophies []catalog.Trophy           `json:"new_trophies,omitempty"`
	Beats       []narration.Beat           `json:"beats"`
}

func (o Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Orchestrator) loadouts() loadout.Manager {
	return loadout.Manager{Catalog: o.Catalog, Logger: o.Logger}
}

func (o Orchestrator) engine() rolls.Engine {
	return rolls.Engine{Catalog: o.Catalog, RNG: o.RNG, Logger: o.Logger}
}

// Available drops missions with unmet prerequisites and completed
// non-repeatable missions.
func (o Orchestrator) Available(state progression.State) []catalog.Mission {
	var out []catalog.Mission
	for _, m := range o.Catalog.Missions {
		if o.isAvailable(state, m) {
			out = append(out, m)
		}
	}
	return out
}

func (o Orchestrator) isAvailable(state progression.State, m catalog.Mission) bool {
	if !m.Repeatable && state.MissionCompleted(m.ID) {
		return false
	}
	p := m.Prerequisites
	for _, ref := range p.MissionsCompleted {
		if !state.MissionCompleted(ref) {
			return false
		}
	}
	if p.TotalMissions > 0 && state.MissionCounters[progression.CounterTotal] < p.TotalMissions {
		return false
	}
	for _, f := range p.Flags {
		if !state.HasFlag(f) {
			return false
		}
	}
	return true
}

// SelectForDisplay samples up to count missions and rolls an anomaly for
// each one that has none. The inputs are not modified.
func (o Orchestrator) SelectForDisplay(available []catalog.Mission, count int) []catalog.Mission {
	pool := slices.Clone(available)
	rolls.Shuffle(o.RNG, pool)
	if count < len(pool) {
		pool = pool[:count]
	}
	e := o.engine()
	for i := range pool {
		if pool[i].Anomaly != nil || o.RNG.Float64() >= AnomalyChance {
			continue
		}
		if a, ok := e.RollAnomaly(); ok {
			pool[i].Anomaly = &a
			o.logger().Debug("anomaly assigned", "mission_id", pool[i].ID, "anomaly_id", a.ID)
		}
	}
	return pool
}

// Board returns the persisted mission board, topping it up to BoardSize and
// dropping offers that are no longer available. It reports whether the board
// changed.
func (o Orchestrator) Board(state *progression.State) ([]catalog.Mission, bool) {
	available := o.Available(*state)
	byID := make(map[string]catalog.Mission, len(available))
	for _, m := range available {
		byID[m.ID] = m
	}

	changed := false
	kept := state.CurrentMissions[:0:0]
	for _, offer := range state.CurrentMissions {
		if _, ok := byID[offer.MissionID]; ok {
			kept = append(kept, offer)
			continue
		}
		changed = true
	}
	if len(kept) < BoardSize {
		var candidates []catalog.Mission
		for _, m := range available {
			if !onBoard(kept, m.ID) {
				candidates = append(candidates, m)
			}
		}
		for _, m := range o.SelectForDisplay(candidates, BoardSize-len(kept)) {
			kept = append(kept, offerFor(m))
			changed = true
		}
	}
	state.CurrentMissions = kept

	out := make([]catalog.Mission, 0, len(kept))
	for _, offer := range kept {
		out = append(out, o.resolveOffer(byID[offer.MissionID], offer))
	}
	return out, changed
}

// ReplaceOffer removes a resolved mission from the board and draws one
// replacement.
func (o Orchestrator) ReplaceOffer(state *progression.State, missionID string) {
	idx := slices.IndexFunc(state.CurrentMissions, func(m progression.MissionOffer) bool { return m.MissionID == missionID })
	if idx < 0 {
		return
	}
	state.CurrentMissions = slices.Delete(slices.Clone(state.CurrentMissions), idx, idx+1)
	var candidates []catalog.Mission
	for _, m := range o.Available(*state) {
		if !onBoard(state.CurrentMissions, m.ID) {
			candidates = append(candidates, m)
		}
	}
	if picked := o.SelectForDisplay(candidates, 1); len(picked) > 0 {
		state.CurrentMissions = append(state.CurrentMissions, offerFor(picked[0]))
	}
}

func (o Orchestrator) resolveOffer(m catalog.Mission, offer progression.MissionOffer) catalog.Mission {
	if offer.AnomalyID == "" || m.Anomaly != nil {
		return m
	}
	a, ok := o.Catalog.Anomaly(offer.AnomalyID)
	if !ok {
		o.logger().Warn("board references unknown anomaly", "mission_id", m.ID, "anomaly_id", offer.AnomalyID)
		return m
	}
	m.Anomaly = &a
	return m
}

func offerFor(m catalog.Mission) progression.MissionOffer {
	offer := progression.MissionOffer{MissionID: m.ID}
	if m.Anomaly != nil {
		offer.AnomalyID = m.Anomaly.ID
	}
	return offer
}

func onBoard(board []progression.MissionOffer, id string) bool {
	return slices.ContainsFunc(board, func(m progression.MissionOffer) bool { return m.MissionID == id })
}

// Find resolves a launchable mission: the board copy (with its anomaly)
// when present, otherwise any available mission.
func (o Orchestrator) Find(state progression.State, missionID string) (catalog.Mission, bool) {
	m, ok := o.Catalog.Mission(missionID)
	if !ok || !o.isAvailable(state, m) {
		return catalog.Mission{}, false
	}
	for _, offer := range state.CurrentMissions {
		if offer.MissionID == missionID {
			return o.resolveOffer(m, offer), true
		}
	}
	return m, true
}

// Launch resolves a mission for squad and applies every outcome to state.
// A rejection leaves state untouched.
func (o Orchestrator) Launch(state *progression.State, missionID string, squad []string) (Outcome, error) {
	m, ok := o.Find(*state, missionID)
	if !ok {
		return Outcome{}, rules.Reject(rules.CodeMissionUnavailable, "mission %s is not available", missionID)
	}
	if err := o.checkSquad(squad); err != nil {
		return Outcome{}, err
	}
	if check := o.loadouts().CheckMissionRequirements(*state, squad, m); !check.Met {
		rej := rules.Reject(rules.CodeRequirementsNotMet, "%s", check.Reason())
		rej.Missing = check.Missing
		return Outcome{}, rej
	}

	rate := rolls.CalculateSuccessRate(o.Catalog, *state, squad, m)
	roll := o.RNG.Float64() * 100
	success := roll <= float64(rate.Final)

	pool := m.Rewards.Failure
	if success {
		pool = m.Rewards.Success
	}
	rewards := rolls.RollRewards(o.RNG, pool, m.Anomaly.Multiplier())
	if success && m.Anomaly != nil {
		for _, bonus := range m.Anomaly.Effects.RewardBonusItems {
			rewards = append(rewards, progression.ItemQuantity{Item: bonus.Item, Quantity: bonus.Amount})
		}
	}
	state.AddAll(rewards)

	state.IncrementMissionCounter("")
	for _, g := range squad {
		state.MissionCounters[g]++
	}
	state.TotalMissionsRun++
	state.AddMissionsTogether(squad, 1)

	if success {
		if a := m.Anomaly; a != nil {
			if a.Effects.RelationshipBonus > 0 && len(squad) >= 2 {
				state.AddMissionsTogether(squad, a.Effects.RelationshipBonus)
			}
			state.SetFlag(a.Effects.UnlockFlag)
		}
		state.MarkMissionCompleted(m.ID)
		state.SetFlag(trophy.SquadSizeFlag(len(squad)))
		if len(squad) == 1 && m.Difficulty >= trophy.SoloDifficultyThreshold {
			state.SetFlag(trophy.FlagSoloDifficult)
		}
		for _, f := range m.UnlockOnComplete.Flags {
			state.SetFlag(f)
		}
	}
	fresh := trophy.Evaluator{Catalog: o.Catalog, Logger: o.Logger}.CheckNew(state)

	if success || !m.PersistOnFail {
		o.ReplaceOffer(state, m.ID)
	}

	o.logger().Info("mission resolved",
		"mission_id", m.ID,
		"squad", squad,
		"final_rate", rate.Final,
		"roll", roll,
		"success", success,
	)
	return Outcome{
		MissionID:   m.ID,
		MissionType: m.MissionType,
		Squad:       slices.Clone(squad),
		Success:     success,
		Rate:        rate,
		Roll:        roll,
		Rewards:     rewards,
		Anomaly:     m.Anomaly,
		NewTrophies: fresh,
		Beats:       o.simulationBeats(m, success, rewards),
	}, nil
}

func (o Orchestrator) checkSquad(squad []string) error {
	if len(squad) == 0 {
		return rules.Reject(rules.CodeEmptySquad, "select at least one guardian")
	}
	if len(squad) > MaxSquadSize {
		return rules.Reject(rules.CodeSquadTooLarge, "maximum %d guardians per mission", MaxSquadSize)
	}
	seen := map[string]bool{}
	for _, g := range squad {
		if _, ok := o.Catalog.Guardian(g); !ok {
			return rules.Reject(rules.CodeUnknownGuardian, "guardian %s not found", g)
		}
		if seen[g] {
			return rules.Reject(rules.CodeUnknownGuardian, "guardian %s listed twice", g)
		}
		seen[g] = true
	}
	return nil
}

func (o Orchestrator) simulationBeats(m catalog.Mission, success bool, rewards []progression.ItemQuantity) []narration.Beat {
	beats := []narration.Beat{{Kind: narration.KindProgress, Text: "Preparing for deployment..."}}
	for _, msg := range m.Simulation.Messages {
		beats = append(beats, narration.Beat{
			Kind:     narration.KindProgress,
			Text:     msg.Text,
			Delay:    time.Duration(msg.DisplayTime * float64(time.Second)),
			Progress: msg.BarProgress,
		})
	}
	beats = append(beats, narration.Beat{Kind: narration.KindProgress, Progress: 100, Delay: 500 * time.Millisecond})
	if success {
		beats = append(beats, narration.System("Mission Success"))
	} else {
		beats = append(beats, narration.System("Mission Failed"))
	}
	for _, r := range rewards {
		beats = append(beats, narration.Beat{Kind: narration.KindSystem, Text: o.Catalog.ItemName(r.Item) + " x" + strconv.Itoa(r.Quantity)})
	}
	return beats
}
