package inmemory

import (
	"maps"
	"sync"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/rules"
)

type Snapshot struct {
	MissionTotal    uint64            `json:"mission_total"`
	MissionSuccess  uint64            `json:"mission_success"`
	MissionFailure  uint64            `json:"mission_failure"`
	MissionsByType  map[string]uint64 `json:"missions_by_type"`
	DropTotal       uint64            `json:"drop_total"`
	DropsByReason   map[string]uint64 `json:"drops_by_reason"`
	RejectionTotal  uint64            `json:"rejection_total"`
	RejectionByCode map[string]uint64 `json:"rejection_by_code"`
}

type Recorder struct {
	mu         sync.Mutex
	success    uint64
	failure    uint64
	byType     map[string]uint64
	byReason   map[string]uint64
	rejections map[string]uint64
}

var _ ports.OutcomeMetrics = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		byType:     map[string]uint64{},
		byReason:   map[string]uint64{},
		rejections: map[string]uint64{},
	}
}

func (r *Recorder) RecordMission(missionType string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if success {
		r.success++
	} else {
		r.failure++
	}
	r.byType[missionType]++
}

func (r *Recorder) RecordDrop(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byReason[reason]++
}

func (r *Recorder) RecordRejection(code rules.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections[string(code)]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		MissionSuccess:  r.success,
		MissionFailure:  r.failure,
		MissionTotal:    r.success + r.failure,
		MissionsByType:  maps.Clone(r.byType),
		DropsByReason:   maps.Clone(r.byReason),
		RejectionByCode: maps.Clone(r.rejections),
	}
	for _, v := range r.byReason {
		out.DropTotal += v
	}
	for _, v := range r.rejections {
		out.RejectionTotal += v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
