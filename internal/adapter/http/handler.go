package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shiplife/internal/app/drops"
	"shiplife/internal/app/loadouts"
	"shiplife/internal/app/missions"
	"shiplife/internal/app/notifications"
	"shiplife/internal/app/ports"
	"shiplife/internal/app/savegame"
	"shiplife/internal/app/status"
	"shiplife/internal/app/trophies"
	"shiplife/internal/app/workshop"
	"shiplife/internal/domain/rules"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	StatusUC        status.UseCase
	MissionsUC      missions.UseCase
	LoadoutsUC      loadouts.UseCase
	DropsUC         drops.UseCase
	TrophiesUC      trophies.UseCase
	WorkshopUC      workshop.UseCase
	NotificationsUC notifications.UseCase
	Saves           saveManager
	KPI             kpiSnapshotProvider
}

type saveManager interface {
	Save(ctx context.Context) error
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, blob []byte) ([]string, error)
	Reset(ctx context.Context) error
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api")
	api.GET("/state", h.state)
	api.POST("/state/save", h.save)
	api.GET("/state/export", h.exportSave)
	api.POST("/state/import", h.importSave)
	api.POST("/state/reset", h.reset)

	api.GET("/missions/available", h.availableMissions)
	api.GET("/missions/board", h.missionBoard)
	api.POST("/missions/launch", h.launchMission)

	api.GET("/loadouts/:guardian", h.loadout)
	api.POST("/loadouts/equip", h.equip)
	api.POST("/loadouts/unequip", h.unequip)

	api.GET("/locations", h.locations)
	api.POST("/drops", h.startDrop)
	api.POST("/drops/:id/choice", h.dropChoice)
	api.POST("/drops/:id/extract", h.extractDrop)

	api.GET("/trophies", h.trophies)

	api.GET("/workstations", h.workstations)
	api.POST("/workstations/craft", h.craft)
	api.POST("/workstations/upgrade", h.upgrade)
	api.POST("/blueprints/upload", h.uploadBlueprint)

	api.GET("/notifications", h.notifications)

	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) state(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c, status.Request{})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) save(c context.Context, ctx *app.RequestContext) {
	if h.Saves == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "save service not configured")
		return
	}
	if err := h.Saves.Save(c); err != nil {
		ctx.JSON(consts.StatusOK, map[string]any{"saved": false, "reason": err.Error()})
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"saved": true})
}

func (h Handler) exportSave(c context.Context, ctx *app.RequestContext) {
	if h.Saves == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "save service not configured")
		return
	}
	blob, err := h.Saves.Export(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "application/json", blob)
}

func (h Handler) importSave(c context.Context, ctx *app.RequestContext) {
	if h.Saves == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "save service not configured")
		return
	}
	body := ctx.Request.Body()
	if len(body) == 0 {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "save blob is required")
		return
	}
	warnings, err := h.Saves.Import(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if warnings == nil {
		warnings = []string{}
	}
	ctx.JSON(consts.StatusOK, map[string]any{"imported": true, "warnings": warnings})
}

func (h Handler) reset(c context.Context, ctx *app.RequestContext) {
	if h.Saves == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "save service not configured")
		return
	}
	if err := h.Saves.Reset(c); err != nil {
		writeError(ctx, err)
		return
	}
	h.state(c, ctx)
}

func (h Handler) availableMissions(c context.Context, ctx *app.RequestContext) {
	resp, err := h.MissionsUC.Available(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) missionBoard(c context.Context, ctx *app.RequestContext) {
	resp, err := h.MissionsUC.Board(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type launchRequest struct {
	MissionID string   `json:"mission_id"`
	Squad     []string `json:"squad"`
}

func (h Handler) launchMission(c context.Context, ctx *app.RequestContext) {
	var body launchRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.MissionsUC.Launch(c, missions.LaunchRequest{MissionID: body.MissionID, Squad: body.Squad})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) loadout(c context.Context, ctx *app.RequestContext) {
	resp, err := h.LoadoutsUC.Get(c, ctx.Param("guardian"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type slotRequest struct {
	GuardianID string `json:"guardian_id"`
	ItemID     string `json:"item_id,omitempty"`
	SlotType   string `json:"slot_type"`
	SlotIndex  int    `json:"slot_index"`
}

func (h Handler) equip(c context.Context, ctx *app.RequestContext) {
	var body slotRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.LoadoutsUC.Equip(c, loadouts.EquipRequest{
		GuardianID: body.GuardianID,
		ItemID:     body.ItemID,
		SlotType:   body.SlotType,
		SlotIndex:  body.SlotIndex,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) unequip(c context.Context, ctx *app.RequestContext) {
	var body slotRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.LoadoutsUC.Unequip(c, loadouts.UnequipRequest{
		GuardianID: body.GuardianID,
		SlotType:   body.SlotType,
		SlotIndex:  body.SlotIndex,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) locations(c context.Context, ctx *app.RequestContext) {
	resp, err := h.DropsUC.Locations(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type startDropRequest struct {
	LocationID string `json:"location_id"`
	GuardianID string `json:"guardian_id"`
}

func (h Handler) startDrop(c context.Context, ctx *app.RequestContext) {
	var body startDropRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.DropsUC.Start(c, drops.StartRequest{LocationID: body.LocationID, GuardianID: body.GuardianID})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

type choiceRequest struct {
	Choice string `json:"choice"`
}

func (h Handler) dropChoice(c context.Context, ctx *app.RequestContext) {
	var body choiceRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.DropsUC.Choose(c, drops.ChoiceRequest{SessionID: ctx.Param("id"), Choice: body.Choice})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) extractDrop(c context.Context, ctx *app.RequestContext) {
	resp, err := h.DropsUC.Extract(c, drops.ExtractRequest{SessionID: ctx.Param("id")})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) trophies(c context.Context, ctx *app.RequestContext) {
	resp, err := h.TrophiesUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) workstations(c context.Context, ctx *app.RequestContext) {
	resp, err := h.WorkshopUC.Stations(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type workstationRequest struct {
	WorkstationID string `json:"workstation_id"`
	RecipeID      string `json:"recipe_id,omitempty"`
}

func (h Handler) craft(c context.Context, ctx *app.RequestContext) {
	var body workstationRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.WorkshopUC.Craft(c, workshop.CraftRequest{WorkstationID: body.WorkstationID, RecipeID: body.RecipeID})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) upgrade(c context.Context, ctx *app.RequestContext) {
	var body workstationRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.WorkshopUC.Upgrade(c, body.WorkstationID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type uploadRequest struct {
	BlueprintID string `json:"blueprint_id"`
}

func (h Handler) uploadBlueprint(c context.Context, ctx *app.RequestContext) {
	var body uploadRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.WorkshopUC.UploadBlueprint(c, body.BlueprintID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) notifications(c context.Context, ctx *app.RequestContext) {
	resp, err := h.NotificationsUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	if r, ok := rules.AsRejection(err); ok {
		writeRejection(ctx, r)
		return
	}
	switch {
	case errors.Is(err, missions.ErrInvalidRequest),
		errors.Is(err, loadouts.ErrInvalidRequest),
		errors.Is(err, drops.ErrInvalidRequest),
		errors.Is(err, workshop.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, savegame.ErrSchemaMismatch):
		writeErrorBody(ctx, consts.StatusBadRequest, "schema_mismatch", err.Error())
	case errors.Is(err, savegame.ErrCorrupt):
		writeErrorBody(ctx, consts.StatusBadRequest, "corrupt_save", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeRejection(ctx *app.RequestContext, r *rules.Rejection) {
	body := map[string]any{
		"code":   string(r.Code),
		"reason": r.Reason,
	}
	if len(r.Missing) > 0 {
		body["missing"] = r.Missing
	}
	ctx.JSON(consts.StatusConflict, map[string]any{"error": body})
}

func writeErrorBody(ctx *app.RequestContext, status int, code, reason string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":   code,
			"reason": reason,
		},
	})
}
