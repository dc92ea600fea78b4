package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/domain/scoring"
	"github.com/predictleague/prediction-league/internal/infrastructure/repository/memory"
	"github.com/predictleague/prediction-league/internal/platform/id"
	"github.com/predictleague/prediction-league/internal/platform/logging"
	"github.com/predictleague/prediction-league/internal/usecase"
)

const (
	testServiceToken = "svc-token"
	testJobToken     = "job-token"
)

type stubFeed struct{}

func (stubFeed) ListWeeklyMarkets(_ context.Context, _ time.Time) ([]market.Market, error) {
	return nil, nil
}

func (stubFeed) GetResolution(_ context.Context, _ string) (bool, bool, error) {
	return false, false, nil
}

type testEnv struct {
	router  http.Handler
	markets *memory.MarketRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.NewNop()
	users := memory.NewUserRepository()
	markets := memory.NewMarketRepository()
	predictions := memory.NewPredictionRepository()
	leagues := memory.NewLeagueRepository()
	achievements := memory.NewAchievementRepository()
	scoringRepo := memory.NewScoringRepository(users, markets, predictions, leagues, achievements)

	userService := usecase.NewUserService(users)
	achievementService := usecase.NewAchievementService(achievements, users, logger)
	scoringService := usecase.NewScoringService(markets, predictions, users, scoringRepo, achievementService, scoring.DefaultConfig(), logger)
	predictionService := usecase.NewPredictionService(predictions, markets, users, achievements, userService, achievementService, id.NewRandomGenerator(), logger)
	leagueService := usecase.NewLeagueService(leagues, users, id.NewRandomGenerator())
	leaderboardService := usecase.NewLeaderboardService(users, leagues)
	marketSyncService := usecase.NewMarketSyncService(markets, stubFeed{}, scoringService, 2, logger)

	handler := NewHandler(
		userService,
		leagueService,
		predictionService,
		scoringService,
		leaderboardService,
		marketSyncService,
		achievementService,
		nil,
		logger,
	)

	return &testEnv{
		router:  NewRouter(handler, logger, nil, testServiceToken, testJobToken),
		markets: markets,
	}
}

func (env *testEnv) seedMarket(t *testing.T, ticker string, closeTime time.Time) {
	t.Helper()

	err := env.markets.Upsert(context.Background(), market.Market{
		Ticker:     ticker,
		WeekStart:  market.WeekStartOf(time.Now().UTC()),
		Title:      "Will it happen?",
		Category:   "Economics",
		CloseTime:  closeTime,
		YesPrice:   0.55,
		NoPrice:    0.45,
		Volume:     1000,
		Resolution: market.ResolutionNone,
	})
	if err != nil {
		t.Fatalf("seed market: %v", err)
	}
}

func (env *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func serviceHeaders() map[string]string {
	return map[string]string{"X-Service-Token": testServiceToken}
}

func jobHeaders() map[string]string {
	return map[string]string{"X-Internal-Job-Token": testJobToken}
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	data, _ := body["data"].(map[string]any)
	return data
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRegisterUser_GetOrCreate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/users",
		`{"id":42,"username":"alice","displayName":"Alice"}`, serviceHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if got, _ := data["displayName"].(string); got != "Alice" {
		t.Fatalf("expected display name Alice, got %v", data["displayName"])
	}

	// repeated registration returns the same user, never a conflict
	rec = env.do(t, http.MethodPost, "/v1/users",
		`{"id":42,"username":"alice","displayName":"Alice"}`, serviceHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on repeat, got %d", rec.Code)
	}
}

func TestRegisterUser_RequiresServiceToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/users",
		`{"id":42,"username":"alice","displayName":"Alice"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without service token, got %d", rec.Code)
	}
}

func TestSubmitPrediction_FullFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarket(t, "ECON-TEST", time.Now().UTC().Add(48*time.Hour))

	rec := env.do(t, http.MethodPost, "/v1/predictions",
		`{"userId":7,"username":"bob","displayName":"Bob","marketTicker":"ECON-TEST","choiceYes":true,"confidence":80}`,
		serviceHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if got, _ := data["marketTicker"].(string); got != "ECON-TEST" {
		t.Fatalf("expected market ticker ECON-TEST, got %v", data["marketTicker"])
	}
	if got, _ := data["confidence"].(float64); got != 80 {
		t.Fatalf("expected confidence 80, got %v", data["confidence"])
	}
}

func TestSubmitPrediction_ClosedMarketConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarket(t, "ECON-CLOSED", time.Now().UTC().Add(-time.Hour))

	rec := env.do(t, http.MethodPost, "/v1/predictions",
		`{"userId":7,"username":"bob","displayName":"Bob","marketTicker":"ECON-CLOSED","choiceYes":true}`,
		serviceHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for closed market, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitPrediction_RejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/predictions",
		`{"userId":7,"displayName":"Bob","marketTicker":"X","bogus":true}`, serviceHeaders())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown field, got %d", rec.Code)
	}
}

func TestResolveMarket_OnceThenConflict(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarket(t, "ECON-RESOLVE", time.Now().UTC().Add(time.Hour))

	rec := env.do(t, http.MethodPost, "/v1/predictions",
		`{"userId":9,"username":"eve","displayName":"Eve","marketTicker":"ECON-RESOLVE","choiceYes":true}`,
		serviceHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/v1/internal/markets/ECON-RESOLVE/resolve",
		`{"outcomeYes":true}`, jobHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on first resolve, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/v1/internal/markets/ECON-RESOLVE/resolve",
		`{"outcomeYes":false}`, jobHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 on second resolve, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLeaderboardAfterResolution(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarket(t, "ECON-BOARD", time.Now().UTC().Add(time.Hour))

	rec := env.do(t, http.MethodPost, "/v1/predictions",
		`{"userId":11,"username":"carol","displayName":"Carol","marketTicker":"ECON-BOARD","choiceYes":false}`,
		serviceHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/v1/internal/markets/ECON-BOARD/resolve",
		`{"outcomeYes":false}`, jobHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on resolve, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/v1/leaderboard", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal leaderboard: %v", err)
	}
	rows, _ := body["data"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected one leaderboard row, got %d", len(rows))
	}
	row, _ := rows[0].(map[string]any)
	if got, _ := row["points"].(float64); got != 10 {
		t.Fatalf("expected 10 points for a correct pick, got %v", row["points"])
	}
}

func TestLeagueLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/users",
		`{"id":21,"username":"dan","displayName":"Dan"}`, serviceHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/v1/leagues",
		`{"name":"Office League","adminUserId":21,"isPrivate":false}`, serviceHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var createBody map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &createBody); err != nil {
		t.Fatalf("unmarshal created league: %v", err)
	}
	createdLeague, _ := createBody["data"].(map[string]any)
	leagueID, _ := createdLeague["id"].(string)
	if leagueID == "" {
		t.Fatalf("expected created league id in response: %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/v1/leagues",
		`{"name":"office league","adminUserId":21}`, serviceHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate name, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/v1/users/21/leagues", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal leagues: %v", err)
	}
	items, _ := body["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected creator to be a member of one league, got %d", len(items))
	}

	rec = env.do(t, http.MethodGet, "/v1/leagues/"+leagueID+"/members", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var membersBody map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &membersBody); err != nil {
		t.Fatalf("unmarshal members: %v", err)
	}
	members, _ := membersBody["data"].([]any)
	if len(members) != 1 {
		t.Fatalf("expected one member, got %d", len(members))
	}
	admin, _ := members[0].(map[string]any)
	if role, _ := admin["role"].(string); role != "admin" {
		t.Fatalf("expected creator to hold the admin role, got %q", role)
	}
}

func TestGetMarket_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/markets/UNKNOWN", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestRunJobsOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/internal/jobs/sync-markets", "", jobHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/v1/internal/jobs/sweep-resolutions", "", jobHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/v1/internal/jobs/reset-weekly", "", jobHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/v1/internal/jobs/sync-markets", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without job token, got %d", rec.Code)
	}
}
