package savegame

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
)

var (
	ErrCorrupt        = errors.New("corrupt save")
	ErrSchemaMismatch = errors.New("save schema mismatch")
)

// Encode writes the indented snapshot of a normalized copy of state.
func Encode(state progression.State, cat *catalog.Catalog) ([]byte, error) {
	s := state.Clone()
	s.Version = progression.SchemaVersion
	s.Normalize(cat)
	return json.MarshalIndent(s, "", "  ")
}

// Decode reads any supported snapshot version. A field that fails to decode
// is reset to its default and reported in the warnings; the rest is kept.
func Decode(blob []byte, cat *catalog.Catalog) (progression.State, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		return progression.State{}, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if raw == nil {
		return progression.State{}, nil, fmt.Errorf("%w: empty document", ErrCorrupt)
	}
	version, err := schemaVersion(raw["version"])
	if err != nil {
		return progression.State{}, nil, err
	}
	if version > progression.SchemaVersion {
		return progression.State{}, nil, fmt.Errorf("%w: version %d is newer than %d", ErrSchemaMismatch, version, progression.SchemaVersion)
	}

	var warnings []string
	if version < 2 {
		warnings = append(warnings, migrateV1(raw)...)
	}

	var s progression.State
	for _, f := range stateFields(&s) {
		data, ok := raw[f.name]
		if !ok || isNull(data) {
			continue
		}
		if err := f.decode(data); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s could not be read and was reset: %v", f.name, err))
		}
	}
	s.Version = progression.SchemaVersion
	if len(s.LearnedBlueprints) == 0 && cat != nil {
		s.LearnedBlueprints = cat.StartingBlueprints()
	}
	s.Normalize(cat)
	return s, warnings, nil
}

// schemaVersion reads the integer version. The legacy "1.0" string and a
// missing version both mean schema 1.
func schemaVersion(data json.RawMessage) (int, error) {
	if len(data) == 0 || isNull(data) {
		return 1, nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("%w: unreadable version %s", ErrSchemaMismatch, data)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unreadable version %q", ErrSchemaMismatch, s)
	}
	return int(f), nil
}

type stateField struct {
	name   string
	decode func(json.RawMessage) error
}

func into[T any](dst *T) func(json.RawMessage) error {
	return func(data json.RawMessage) error {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func stateFields(s *progression.State) []stateField {
	return []stateField{
		{"active_guardian", into(&s.ActiveGuardian)},
		{"inventory", into(&s.Inventory)},
		{"loadouts", into(&s.Loadouts)},
		{"flags", into(&s.Flags)},
		{"mission_counters", into(&s.MissionCounters)},
		{"total_missions_run", into(&s.TotalMissionsRun)},
		{"relationships", into(&s.Relationships)},
		{"completed_missions", into(&s.CompletedMissions)},
		{"completed_conversations", into(&s.CompletedConversations)},
		{"workstation_levels", into(&s.WorkstationLevels)},
		{"learned_blueprints", into(&s.LearnedBlueprints)},
		{"crafted_items", into(&s.CraftedItems)},
		{"progression", into(&s.Progression)},
		{"current_missions", into(&s.CurrentMissions)},
		{"notified_trophies", into(&s.NotifiedTrophies)},
	}
}

// migrateV1 rewrites schema 1 fields in place:
// workstations{id:{level}} becomes workstation_levels{id:level},
// progression.activities_completed._total becomes progression.activities_total
// and full mission objects on the board become offers.
func migrateV1(raw map[string]json.RawMessage) []string {
	var warnings []string
	if data, ok := raw["workstations"]; ok && !isNull(data) {
		var old map[string]struct {
			Level int `json:"level"`
		}
		if err := json.Unmarshal(data, &old); err != nil {
			warnings = append(warnings, fmt.Sprintf("workstations could not be migrated: %v", err))
		} else {
			levels := make(map[string]int, len(old))
			for id, ws := range old {
				levels[id] = ws.Level
			}
			raw["workstation_levels"] = mustMarshal(levels)
		}
		delete(raw, "workstations")
	}

	if data, ok := raw["progression"]; ok && !isNull(data) {
		var prog map[string]json.RawMessage
		if err := json.Unmarshal(data, &prog); err == nil {
			var done map[string]int
			if err := json.Unmarshal(prog["activities_completed"], &done); err == nil && done != nil {
				if total, ok := done["_total"]; ok {
					delete(done, "_total")
					prog["activities_total"] = mustMarshal(total)
					prog["activities_completed"] = mustMarshal(done)
					raw["progression"] = mustMarshal(prog)
				}
			}
		}
	}

	if data, ok := raw["current_missions"]; ok && !isNull(data) {
		var old []struct {
			ID      string `json:"id"`
			Anomaly *struct {
				ID string `json:"id"`
			} `json:"anomaly"`
		}
		if err := json.Unmarshal(data, &old); err != nil {
			warnings = append(warnings, fmt.Sprintf("current_missions could not be migrated: %v", err))
			delete(raw, "current_missions")
		} else {
			offers := make([]progression.MissionOffer, 0, len(old))
			for _, m := range old {
				if m.ID == "" {
					continue
				}
				offer := progression.MissionOffer{MissionID: m.ID}
				if m.Anomaly != nil {
					offer.AnomalyID = m.Anomaly.ID
				}
				offers = append(offers, offer)
			}
			raw["current_missions"] = mustMarshal(offers)
		}
	}
	return warnings
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("savegame: marshal %T: %v", v, err))
	}
	return b
}

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
