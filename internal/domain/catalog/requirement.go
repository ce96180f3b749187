package catalog

import (
	"encoding/json"
	"fmt"
)

type RequirementType string

const (
	ReqMissionsCompleted RequirementType = "missions_completed"
	ReqPerfectStreak     RequirementType = "perfect_streak"
	ReqMissionType       RequirementType = "mission_type"
	ReqSquadSize         RequirementType = "squad_size"
	ReqSoloDifficult     RequirementType = "solo_difficult"
	ReqFullLoadouts      RequirementType = "full_loadouts"
	ReqUniqueCrafts      RequirementType = "unique_crafts"
	ReqRareItems         RequirementType = "rare_items"
	ReqConversations     RequirementType = "conversations"
)

// Requirement is the closed set of trophy requirement kinds. Every variant is
// declared in this file.
type Requirement interface {
	RequirementType() RequirementType
	isRequirement()
}

type MissionsCompleted struct{ Count int }
type PerfectStreak struct{ Count int }
type MissionTypeCount struct {
	MissionType string
	Count       int
}
type SquadSize struct{ Size int }
type SoloDifficult struct{}
type FullLoadouts struct{ Count int }
type UniqueCrafts struct{ Count int }
type RareItems struct{ Count int }
type Conversations struct{ Count int }

// UnknownRequirement keeps a requirement whose type this build does not know.
type UnknownRequirement struct {
	Type string
	Raw  json.RawMessage
}

func (MissionsCompleted) RequirementType() RequirementType { return ReqMissionsCompleted }
func (PerfectStreak) RequirementType() RequirementType     { return ReqPerfectStreak }
func (MissionTypeCount) RequirementType() RequirementType  { return ReqMissionType }
func (SquadSize) RequirementType() RequirementType         { return ReqSquadSize }
func (SoloDifficult) RequirementType() RequirementType     { return ReqSoloDifficult }
func (FullLoadouts) RequirementType() RequirementType      { return ReqFullLoadouts }
func (UniqueCrafts) RequirementType() RequirementType      { return ReqUniqueCrafts }
func (RareItems) RequirementType() RequirementType         { return ReqRareItems }
func (Conversations) RequirementType() RequirementType     { return ReqConversations }

func (u UnknownRequirement) RequirementType() RequirementType { return RequirementType(u.Type) }

func (MissionsCompleted) isRequirement()  {}
func (PerfectStreak) isRequirement()      {}
func (MissionTypeCount) isRequirement()   {}
func (SquadSize) isRequirement()          {}
func (SoloDifficult) isRequirement()      {}
func (FullLoadouts) isRequirement()       {}
func (UniqueCrafts) isRequirement()       {}
func (RareItems) isRequirement()          {}
func (Conversations) isRequirement()      {}
func (UnknownRequirement) isRequirement() {}

type requirementWire struct {
	Type        string `json:"type"`
	Count       int    `json:"count,omitempty"`
	Size        int    `json:"size,omitempty"`
	MissionType string `json:"mission_type,omitempty"`
}

func decodeRequirement(raw json.RawMessage) (Requirement, error) {
	if len(raw) == 0 {
		return UnknownRequirement{}, nil
	}
	var w requirementWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	switch RequirementType(w.Type) {
	case ReqMissionsCompleted:
		return MissionsCompleted{Count: w.Count}, nil
	case ReqPerfectStreak:
		return PerfectStreak{Count: w.Count}, nil
	case ReqMissionType:
		return MissionTypeCount{MissionType: w.MissionType, Count: w.Count}, nil
	case ReqSquadSize:
		return SquadSize{Size: w.Size}, nil
	case ReqSoloDifficult:
		return SoloDifficult{}, nil
	case ReqFullLoadouts:
		return FullLoadouts{Count: w.Count}, nil
	case ReqUniqueCrafts:
		return UniqueCrafts{Count: w.Count}, nil
	case ReqRareItems:
		return RareItems{Count: w.Count}, nil
	case ReqConversations:
		return Conversations{Count: w.Count}, nil
	default:
		return UnknownRequirement{Type: w.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

func encodeRequirement(r Requirement) (json.RawMessage, error) {
	var w requirementWire
	switch v := r.(type) {
	case nil:
		return nil, nil
	case MissionsCompleted:
		w = requirementWire{Type: string(ReqMissionsCompleted), Count: v.Count}
	case PerfectStreak:
		w = requirementWire{Type: string(ReqPerfectStreak), Count: v.Count}
	case MissionTypeCount:
		w = requirementWire{Type: string(ReqMissionType), MissionType: v.MissionType, Count: v.Count}
	case SquadSize:
		w = requirementWire{Type: string(ReqSquadSize), Size: v.Size}
	case SoloDifficult:
		w = requirementWire{Type: string(ReqSoloDifficult)}
	case FullLoadouts:
		w = requirementWire{Type: string(ReqFullLoadouts), Count: v.Count}
	case UniqueCrafts:
		w = requirementWire{Type: string(ReqUniqueCrafts), Count: v.Count}
	case RareItems:
		w = requirementWire{Type: string(ReqRareItems), Count: v.Count}
	case Conversations:
		w = requirementWire{Type: string(ReqConversations), Count: v.Count}
	case UnknownRequirement:
		if len(v.Raw) > 0 {
			return v.Raw, nil
		}
		w = requirementWire{Type: v.Type}
	default:
		return nil, fmt.Errorf("unsupported requirement %T", r)
	}
	return json.Marshal(w)
}

type trophyWire struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Requirement json.RawMessage `json:"requirement,omitempty"`
}

func (t *Trophy) UnmarshalJSON(data []byte) error {
	var w trophyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	req, err := decodeRequirement(w.Requirement)
	if err != nil {
		return fmt.Errorf("trophy %s requirement: %w", w.ID, err)
	}
	t.ID = w.ID
	t.Name = w.Name
	t.Description = w.Description
	t.Requirement = req
	return nil
}

func (t Trophy) MarshalJSON() ([]byte, error) {
	req, err := encodeRequirement(t.Requirement)
	if err != nil {
		return nil, err
	}
	return json.Marshal(trophyWire{ID: t.ID, Name: t.Name, Description: t.Description, Requirement: req})
}
