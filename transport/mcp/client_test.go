package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func sampleState() *engine.GameState {
	return &engine.GameState{
		Grid: engine.NewGridFromRows([][]int{
			{2, 4, 8, 16},
			{0, 0, 0, 0},
			{0, 0, 2, 0},
			{0, 0, 0, 0},
		}),
		Score:         24,
		Moves:         3,
		MaxTile:       16,
		PossibleMoves: []string{"right", "down"},
	}
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" && r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "test-session", "score": 5})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]any
	if err := client.apiCall(context.Background(), "POST", "/api", map[string]string{"a": "b"}, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["id"] != "test-session" {
		t.Errorf("Expected id test-session, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error body", http.StatusNotFound, `{"error":"session not found","code":404}`, "session not found"},
		{"plain body", http.StatusInternalServerError, "Internal Server Error", "API error: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
			if err == nil {
				t.Fatal("Expected error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Expected error %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		resp := service.SessionInfo{
			ID:         "test-session-123",
			ConfigName: "Quick",
			GameState:  sampleState(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), callRequest("create_session", map[string]any{"config_id": "quick"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "test-session-123") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
	if gotBody["config_id"] != "quick" {
		t.Errorf("Expected config_id quick in request, got %v", gotBody)
	}
}

func TestClient_handleMove(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/abc/move" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["direction"] != "right" {
			t.Errorf("Expected direction right, got %v", body["direction"])
		}

		json.NewEncoder(w).Encode(service.MoveResult{
			Success:   true,
			GameState: sampleState(),
			Events:    []service.GameEvent{{Type: service.EventMerge, Message: "1 merge"}},
			Step:      &service.StepInfo{Idx: 1, Dir: "right", Success: true, ScoreDelta: 4, Merges: 1},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleMove(context.Background(), callRequest("move", map[string]any{
		"session_id": "abc",
		"direction":  "right",
		"intent":     "keep 16 in the corner",
	}))
	if err != nil {
		t.Fatalf("handleMove failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Move successful", "+4 points", "merge: 1 merge", "Score: 24"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_handleMove_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "invalid direction", "code": 400})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleMove(context.Background(), callRequest("move", map[string]any{
		"session_id": "abc",
		"direction":  "north",
	}))
	if err != nil {
		t.Fatalf("handler should report errors in the result, got %v", err)
	}
	if !result.IsError {
		t.Error("Expected error result")
	}
	if text := resultText(t, result); !strings.Contains(text, "invalid direction") {
		t.Errorf("Expected API error message, got: %s", text)
	}
}

func TestClient_handleBulkMove(t *testing.T) {
	var gotMoves []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Moves []string `json:"moves"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotMoves = body.Moves

		json.NewEncoder(w).Encode(service.BulkMoveResult{
			MovesExecuted:  1,
			RequestedMoves: 2,
			StartScore:     20,
			EndScore:       24,
			ScoreDelta:     4,
			StopReasonCode: service.StopBlocked,
			StoppedOnMove:  2,
			Steps:          []service.StepInfo{{Idx: 1, Dir: "right", Success: true, ScoreDelta: 4}},
			GameState:      sampleState(),
		})
	}))
	defer server.Close()

	// Arguments arrive from JSON so arrays are []any
	result, err := NewClient(server.URL).handleBulkMove(context.Background(), callRequest("bulk_move", map[string]any{
		"session_id": "abc",
		"moves":      []any{"right", "right"},
	}))
	if err != nil {
		t.Fatalf("handleBulkMove failed: %v", err)
	}

	if len(gotMoves) != 2 {
		t.Errorf("Expected 2 moves sent, got %v", gotMoves)
	}

	text := resultText(t, result)
	for _, want := range []string{"executed 1 of 2 moves", "Stopped: blocked at move 2", "Score: 20 → 24 (+4)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_handleSuggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/sessions/abc/suggest" {
			t.Errorf("Expected GET suggest, got %s %s", r.Method, r.URL.Path)
		}
		state := sampleState()
		json.NewEncoder(w).Encode(service.SuggestResult{
			SessionID:  "abc",
			Suggestion: engine.Analyze(state.Grid, 2),
			GameState:  state,
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleSuggest(context.Background(), callRequest("suggest_move", map[string]any{"session_id": "abc"}))
	if err != nil {
		t.Fatalf("handleSuggest failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Suggested move:") {
		t.Errorf("Expected suggestion, got: %s", text)
	}
	if !strings.Contains(text, "*") {
		t.Errorf("Expected the chosen direction to be marked, got: %s", text)
	}
}

func TestClient_handleAutoPlay(t *testing.T) {
	var gotBody map[string]int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(service.AutoPlayResult{
			MovesRequested: 3,
			MovesExecuted:  3,
			Directions:     []string{"left", "up", "left"},
			StopReasonCode: service.StopLimit,
			EndScore:       12,
			ScoreDelta:     12,
			GameState:      sampleState(),
			Duration:       5 * time.Millisecond,
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleAutoPlay(context.Background(), callRequest("auto_play", map[string]any{
		"session_id": "abc",
		"max_moves":  float64(3),
	}))
	if err != nil {
		t.Fatalf("handleAutoPlay failed: %v", err)
	}

	if gotBody["max_moves"] != 3 {
		t.Errorf("Expected max_moves 3, got %v", gotBody)
	}
	text := resultText(t, result)
	for _, want := range []string{"played 3 of 3 moves", "stopped: limit", "Moves: left up left"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestFormatGameState(t *testing.T) {
	state := sampleState()
	state.LastSpawn = &engine.Spawn{Position: engine.Position{Row: 2, Col: 2}, Value: 2}

	text := formatGameState(state)
	for _, want := range []string{"Score: 24", "Max tile: 16", "Possible moves: right, down", "New tile: 2 at (2,2)", "   16"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in game state, got: %s", want, text)
		}
	}
	if strings.Contains(text, "GAME OVER") {
		t.Error("Unexpected game over marker")
	}
}

func TestFormatGameState_GameOver(t *testing.T) {
	state := sampleState()
	state.GameOver = true
	state.Message = "No moves left"

	text := formatGameState(state)
	if !strings.Contains(text, "GAME OVER") {
		t.Errorf("Expected game over marker, got: %s", text)
	}
	if !strings.Contains(text, "Message: No moves left") {
		t.Errorf("Expected message, got: %s", text)
	}
}

func TestFormatGameState_Victory(t *testing.T) {
	state := sampleState()
	state.Won = true

	if text := formatGameState(state); !strings.Contains(text, "TARGET REACHED") {
		t.Errorf("Expected victory marker, got: %s", text)
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	if got := formatGameState(nil); got != "No game state available" {
		t.Errorf("Unexpected output for nil state: %s", got)
	}
}

func TestFormatMoveResult_Failed(t *testing.T) {
	result := &service.MoveResult{
		Success:   false,
		GameState: sampleState(),
		Events:    []service.GameEvent{{Type: service.EventBlocked, Message: "Nothing moved"}},
	}

	text := formatMoveResult(result)
	if !strings.Contains(text, "Move changed nothing") {
		t.Errorf("Expected failure message, got: %s", text)
	}
	if !strings.Contains(text, "blocked: Nothing moved") {
		t.Errorf("Expected blocked event, got: %s", text)
	}
}

func TestFormatSuggestion_NoLegalMove(t *testing.T) {
	if text := formatSuggestion(&engine.Suggestion{}); !strings.Contains(text, "No legal move") {
		t.Errorf("Expected no legal move text, got: %s", text)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", map[string]any{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"2048 - Complete Instructions", "GAME OBJECTIVE:", "GAME MECHANICS:", "STRATEGY:", "suggest_move"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected '%s' in instructions", want)
		}
	}
}

func TestArguments_MissingMap(t *testing.T) {
	args := arguments(mcp.CallToolRequest{})
	if args == nil || len(args) != 0 {
		t.Errorf("Expected empty argument map, got %v", args)
	}
}
