package status

import "shiplife/internal/domain/progression"

type Request struct{}

type Response struct {
	State      progression.State `json:"state"`
	Statistics Statistics        `json:"statistics"`
}

type Statistics struct {
	Missions  MissionStats  `json:"missions"`
	Guardians GuardianStats `json:"guardians"`
	Resources ResourceStats `json:"resources"`
	Crafting  CraftingStats `json:"crafting"`
	Drops     DropStats     `json:"drops"`
}

type MissionStats struct {
	Completed   int            `json:"completed"`
	Run         int            `json:"run"`
	SuccessRate int            `json:"success_rate"`
	ByType      map[string]int `json:"by_type"`
}

type GuardianStats struct {
	MostUsed string         `json:"most_used,omitempty"`
	Missions map[string]int `json:"missions"`
}

type ResourceStats struct {
	Total       int    `json:"total"`
	UniqueItems int    `json:"unique_items"`
	RarestItem  string `json:"rarest_item,omitempty"`
}

type CraftingStats struct {
	Unique int `json:"unique"`
	Total  int `json:"total"`
}

type DropStats struct {
	Total               int `json:"total"`
	Successful          int `json:"successful"`
	Failed              int `json:"failed"`
	ActivitiesCompleted int `json:"activities_completed"`
}
