package crafting

import (
	"fmt"
	"log/slog"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
	"shiplife/internal/domain/rules"
)

type Workshop struct {
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

func (w Workshop) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

type RecipeStatus struct {
	Recipe   catalog.Recipe `json:"recipe"`
	CanCraft bool           `json:"can_craft"`
	Missing  []string       `json:"missing,omitempty"`
}

type StationStatus struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Level       int                  `json:"level"`
	LevelName   string               `json:"level_name"`
	MaxLevel    int                  `json:"max_level"`
	NextUpgrade *catalog.UpgradeCost `json:"next_upgrade,omitempty"`
	Recipes     []RecipeStatus       `json:"recipes"`
}

type Crafted struct {
	WorkstationID string                     `json:"workstation_id"`
	RecipeID      string                     `json:"recipe_id"`
	Name          string                     `json:"name"`
	Spent         []progression.ItemQuantity `json:"spent"`
	Output        progression.ItemQuantity   `json:"output"`
}

type Upgraded struct {
	WorkstationID string `json:"workstation_id"`
	Level         int    `json:"level"`
	LevelName     string `json:"level_name"`
}

// Stations reports every workstation with its level and craftable recipes.
func (w Workshop) Stations(state progression.State) []StationStatus {
	out := make([]StationStatus, 0, len(w.Catalog.Workstations))
	for _, ws := range w.Catalog.Workstations {
		lvl := state.WorkstationLevel(ws.ID)
		st := StationStatus{
			ID:        ws.ID,
			Name:      ws.Name,
			Level:     lvl,
			LevelName: ws.LevelName(lvl),
			MaxLevel:  ws.MaxLevel,
		}
		if lvl < ws.MaxLevel {
			if cost, ok := ws.UpgradeCostFor(lvl + 1); ok {
				st.NextUpgrade = &cost
			}
		}
		for _, r := range ws.Recipes {
			missing := w.recipeMissing(state, lvl, r)
			st.Recipes = append(st.Recipes, RecipeStatus{Recipe: r, CanCraft: len(missing) == 0, Missing: missing})
		}
		out = append(out, st)
	}
	return out
}

func (w Workshop) recipeMissing(state progression.State, level int, r catalog.Recipe) []string {
	var missing []string
	if level < r.RequiredLevel {
		missing = append(missing, fmt.Sprintf("Requires level %d", r.RequiredLevel))
	}
	if r.BlueprintRequired != "" && !state.BlueprintLearned(r.BlueprintRequired) {
		missing = append(missing, "Requires blueprint "+w.Catalog.ItemName(r.BlueprintRequired))
	}
	return append(missing, w.shortfall(state, costOf(r.Cost))...)
}

func (w Workshop) shortfall(state progression.State, costs []progression.ItemQuantity) []string {
	var missing []string
	for _, c := range costs {
		if have := state.Count(c.Item); have < c.Quantity {
			missing = append(missing, fmt.Sprintf("%s %d/%d", w.Catalog.ItemName(c.Item), have, c.Quantity))
		}
	}
	return missing
}

func (w Workshop) station(id string) (catalog.Workstation, error) {
	ws, ok := w.Catalog.Workstation(id)
	if !ok {
		return catalog.Workstation{}, rules.Reject(rules.CodeUnknownWorkstation, "workstation %s not found", id)
	}
	return ws, nil
}

// Craft spends a recipe's cost and adds its output. Level and blueprint are
// checked before resources; any failure leaves state untouched.
func (w Workshop) Craft(state *progression.State, workstationID, recipeID string) (Crafted, error) {
	ws, err := w.station(workstationID)
	if err != nil {
		return Crafted{}, err
	}
	r, ok := ws.Recipe(recipeID)
	if !ok {
		return Crafted{}, rules.Reject(rules.CodeUnknownRecipe, "recipe %s not found at %s", recipeID, ws.Name)
	}
	if lvl := state.WorkstationLevel(ws.ID); lvl < r.RequiredLevel {
		return Crafted{}, rules.Reject(rules.CodeLevelTooLow, "%s requires %s level %d", r.Name, ws.Name, r.RequiredLevel)
	}
	if r.BlueprintRequired != "" && !state.BlueprintLearned(r.BlueprintRequired) {
		return Crafted{}, rules.Reject(rules.CodeBlueprintMissing, "%s requires blueprint %s", r.Name, w.Catalog.ItemName(r.BlueprintRequired))
	}
	cost := costOf(r.Cost)
	if !state.ConsumeAll(cost) {
		rej := rules.Reject(rules.CodeInsufficientItems, "insufficient resources for %s", r.Name)
		rej.Missing = w.shortfall(*state, cost)
		return Crafted{}, rej
	}
	out := progression.ItemQuantity{Item: r.Output.Item, Quantity: r.Output.Amount}
	state.AddItem(out.Item, out.Quantity)
	state.RecordCraft(out.Item, out.Quantity)

	w.logger().Info("item crafted", "workstation_id", ws.ID, "recipe_id", r.ID, "output", out.Item, "amount", out.Quantity)
	return Crafted{WorkstationID: ws.ID, RecipeID: r.ID, Name: r.Name, Spent: cost, Output: out}, nil
}

// Upgrade pays the next level's cost and raises the workstation one level.
func (w Workshop) Upgrade(state *progression.State, workstationID string) (Upgraded, error) {
	ws, err := w.station(workstationID)
	if err != nil {
		return Upgraded{}, err
	}
	lvl := state.WorkstationLevel(ws.ID)
	if lvl >= ws.MaxLevel {
		return Upgraded{}, rules.Reject(rules.CodeMaxLevel, "%s is already at max level", ws.Name)
	}
	target := lvl + 1
	up, ok := ws.UpgradeCostFor(target)
	if !ok {
		w.logger().Warn("workstation has no upgrade cost", "workstation_id", ws.ID, "level", target)
	}
	cost := costOf(up.Resources)
	if !state.ConsumeAll(cost) {
		rej := rules.Reject(rules.CodeInsufficientItems, "insufficient resources to upgrade %s", ws.Name)
		rej.Missing = w.shortfall(*state, cost)
		return Upgraded{}, rej
	}
	if state.WorkstationLevels == nil {
		state.WorkstationLevels = map[string]int{}
	}
	state.WorkstationLevels[ws.ID] = target

	w.logger().Info("workstation upgraded", "workstation_id", ws.ID, "level", target)
	return Upgraded{WorkstationID: ws.ID, Level: target, LevelName: ws.LevelName(target)}, nil
}

// UploadBlueprint consumes one blueprint item and learns it.
func (w Workshop) UploadBlueprint(state *progression.State, blueprintID string) (string, error) {
	it, ok := w.Catalog.Item(blueprintID)
	if !ok || it.Type != catalog.ItemBlueprint {
		return "", rules.Reject(rules.CodeUnknownItem, "%s is not a blueprint", blueprintID)
	}
	if state.BlueprintLearned(blueprintID) {
		return "", rules.Reject(rules.CodeBlueprintAlreadyKnown, "%s already uploaded", it.Name)
	}
	if !state.ConsumeItem(blueprintID, 1) {
		return "", rules.Reject(rules.CodeInsufficientItems, "%s not in inventory", it.Name)
	}
	state.LearnBlueprint(blueprintID)
	w.logger().Info("blueprint uploaded", "blueprint_id", blueprintID)
	return it.Name, nil
}

func costOf(amounts []catalog.ItemAmount) []progression.ItemQuantity {
	out := make([]progression.ItemQuantity, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, progression.ItemQuantity{Item: a.Item, Quantity: a.Amount})
	}
	return out
}
