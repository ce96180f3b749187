package missions

import (
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/mission"
)

type AvailableResponse struct {
	Missions []catalog.Mission `json:"missions"`
}

type BoardResponse struct {
	Missions []catalog.Mission `json:"missions"`
}

type LaunchRequest struct {
	MissionID string
	Squad     []string
}

type LaunchResponse struct {
	Outcome mission.Outcome `json:"outcome"`
}
