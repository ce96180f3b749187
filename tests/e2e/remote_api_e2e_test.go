//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func TestRemoteAPI_MainEndpoints(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/")
	guardian := envOr("E2E_GUARDIAN_ID", "stella")
	location := envOr("E2E_LOCATION_ID", "derelict_wreck")
	client := &http.Client{Timeout: 20 * time.Second}

	t.Run("malformed json is rejected", func(t *testing.T) {
		status, body, err := doRaw(client, http.MethodPost, baseURL+"/api/missions/launch", []byte(`{"mission_id":`))
		if err != nil {
			t.Fatalf("launch request: %v", err)
		}
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", status, string(body))
		}
	})

	t.Run("unknown guardian loadout is not found", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodGet, baseURL+"/api/loadouts/nobody", nil)
		if status != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", status, string(body))
		}
	})

	t.Run("board launch state", func(t *testing.T) {
		status, boardBody := mustJSON(t, client, http.MethodGet, baseURL+"/api/missions/board", nil)
		if status != http.StatusOK {
			t.Fatalf("board status=%d body=%s", status, string(boardBody))
		}
		var board map[string]any
		if err := json.Unmarshal(boardBody, &board); err != nil {
			t.Fatalf("unmarshal board: %v body=%s", err, string(boardBody))
		}
		missions := asSlice(board["missions"])
		if len(missions) == 0 {
			t.Skip("no missions on the board")
		}
		missionID, _ := asMap(missions[0])["id"].(string)

		status, launchBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/missions/launch", map[string]any{
			"mission_id": missionID,
			"squad":      []string{guardian},
		})
		if status != http.StatusOK {
			t.Fatalf("launch status=%d body=%s", status, string(launchBody))
		}
		var launch map[string]any
		if err := json.Unmarshal(launchBody, &launch); err != nil {
			t.Fatalf("unmarshal launch: %v body=%s", err, string(launchBody))
		}
		outcome := asMap(launch["outcome"])
		if _, ok := outcome["success"].(bool); !ok {
			t.Fatalf("outcome missing success flag: %s", string(launchBody))
		}
		if len(asSlice(outcome["beats"])) == 0 {
			t.Fatalf("outcome missing narration: %s", string(launchBody))
		}

		status, stateBody := mustJSON(t, client, http.MethodGet, baseURL+"/api/state", nil)
		if status != http.StatusOK {
			t.Fatalf("state status=%d body=%s", status, string(stateBody))
		}
		var state map[string]any
		if err := json.Unmarshal(stateBody, &state); err != nil {
			t.Fatalf("unmarshal state: %v", err)
		}
		if run, _ := asMap(asMap(state["statistics"])["missions"])["run"].(float64); run < 1 {
			t.Fatalf("expected at least one mission run, got %v", run)
		}
	})

	t.Run("drop until extraction", func(t *testing.T) {
		status, startBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/drops", map[string]any{
			"location_id": location,
			"guardian_id": guardian,
		})
		if status != http.StatusCreated {
			t.Fatalf("start drop status=%d body=%s", status, string(startBody))
		}
		var step map[string]any
		if err := json.Unmarshal(startBody, &step); err != nil {
			t.Fatalf("unmarshal start: %v", err)
		}
		sessionID, _ := asMap(step["session"])["id"].(string)
		if sessionID == "" {
			t.Fatalf("missing session id: %s", string(startBody))
		}

		for i := 0; i < 20; i++ {
			if phase, _ := asMap(step["step"])["phase"].(string); phase == "extraction" {
				break
			}
			status, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/drops/"+sessionID+"/choice", map[string]any{"choice": "engage"})
			if status != http.StatusOK {
				t.Fatalf("choice status=%d body=%s", status, string(body))
			}
			step = map[string]any{}
			if err := json.Unmarshal(body, &step); err != nil {
				t.Fatalf("unmarshal choice: %v", err)
			}
		}

		status, extractBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/drops/"+sessionID+"/extract", nil)
		if status != http.StatusOK {
			t.Fatalf("extract status=%d body=%s", status, string(extractBody))
		}
		status, againBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/drops/"+sessionID+"/extract", nil)
		if status != http.StatusConflict {
			t.Fatalf("second extract must be rejected, status=%d body=%s", status, string(againBody))
		}
		var rejected map[string]any
		_ = json.Unmarshal(againBody, &rejected)
		if code, _ := asMap(rejected["error"])["code"].(string); code != "DROP_FINISHED" {
			t.Fatalf("expected DROP_FINISHED, got %q", code)
		}
	})

	t.Run("ops kpi", func(t *testing.T) {
		status, kpiBody := mustJSON(t, client, http.MethodGet, baseURL+"/ops/kpi", nil)
		if status != http.StatusOK {
			t.Fatalf("kpi status=%d body=%s", status, string(kpiBody))
		}
		var kpi map[string]any
		if err := json.Unmarshal(kpiBody, &kpi); err != nil {
			t.Fatalf("unmarshal kpi: %v body=%s", err, string(kpiBody))
		}
		if _, ok := kpi["mission_total"]; !ok {
			t.Fatalf("kpi missing mission_total: %s", string(kpiBody))
		}
	})
}

func mustJSON(t *testing.T, client *http.Client, method, url string, body any) (int, []byte) {
	t.Helper()
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		payload = b
	}
	status, respBody, err := doRaw(client, method, url, payload)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return status, respBody
}

func doRaw(client *http.Client, method, url string, payloadBytes []byte) (int, []byte, error) {
	var lastStatus int
	var lastBody []byte
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var payload io.Reader
		if len(payloadBytes) > 0 {
			payload = bytes.NewReader(payloadBytes)
		}
		req, err := http.NewRequest(method, url, payload)
		if err != nil {
			return 0, nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		lastStatus, lastBody, lastErr = resp.StatusCode, respBody, nil
		if resp.StatusCode >= 500 {
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	if lastErr != nil {
		return 0, nil, lastErr
	}
	return lastStatus, lastBody, nil
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}
