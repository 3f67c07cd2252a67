package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"fabr-admin/internal/api"
	"fabr-admin/internal/catalog"
	"fabr-admin/internal/config"
	"fabr-admin/internal/database"
	"fabr-admin/internal/db"
	"fabr-admin/internal/domain"
	"fabr-admin/internal/events"
	"fabr-admin/internal/metrics"
	"fabr-admin/internal/middleware"
	"fabr-admin/internal/repository"
	"fabr-admin/internal/service"

	"connectrpc.com/connect"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// league is an in-memory stand-in for the league API.
type league struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string][]byte
	fail     map[string]int
	upload   *multipart.FileHeader
	gameID   string
}

func (l *league) handle(ctx *fasthttp.RequestCtx) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := string(ctx.Path())
	l.requests = append(l.requests, string(ctx.Method())+" "+string(ctx.RequestURI()))
	l.bodies[path] = append([]byte(nil), ctx.PostBody()...)

	ctx.SetContentType("application/json")
	if status, ok := l.fail[path]; ok {
		ctx.SetStatusCode(status)
		ctx.SetBodyString(`{"error":"boom"}`)
		return
	}

	switch path {
	case "/times":
		ctx.SetBodyString(`[{"id":1,"nome":"Leões","sigla":"LEO","temporada":"2025"},{"id":2,"nome":"Touros","sigla":"TOU","temporada":"2025"}]`)
	case "/jogadores":
		ctx.SetBodyString(`[{"id":10,"nome":"Caio","timeId":1,"posicao":"QB"}]`)
	case "/time":
		ctx.SetStatusCode(fasthttp.StatusCreated)
		ctx.SetBodyString(`{"id":3,"nome":"Águias","sigla":"AGU","temporada":"2025"}`)
	case "/iniciar-temporada/2026":
		ctx.SetBodyString(`{"times":2,"jogadores":1}`)
	case "/importar-times":
		fh, err := ctx.FormFile("arquivo")
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}
		l.upload = fh
		ctx.SetBodyString(`{"importados":2}`)
	case "/reprocessar-jogo":
		l.gameID = string(ctx.FormValue("id_jogo"))
		ctx.SetBodyString(`{"ok":true,"force":` + string(ctx.FormValue("force")) + `}`)
	case "/jogos-processados":
		ctx.SetBodyString("null")
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (l *league) failWith(path string, status int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail[path] = status
}

func (l *league) seen() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.requests...)
}

func (l *league) lastUpload() (*multipart.FileHeader, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.upload, l.gameID
}

func (l *league) lastBody(path string) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bodies[path]
}

type testEnv struct {
	url    string
	client *http.Client
	league *league
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	upstream := &league{bodies: map[string][]byte{}, fail: map[string]int{}}
	ln := fasthttputil.NewInmemoryListener()
	fsrv := &fasthttp.Server{Handler: upstream.handle}
	go func() { _ = fsrv.Serve(ln) }()
	t.Cleanup(func() { _ = fsrv.Shutdown() })

	rec := metrics.New()
	hc := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	leagueAPI := api.New("http://league.test", hc, rec, logger)

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "admin.db"), logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	queries := db.New(sqlDB)

	cfg := &config.Config{
		AdminUsername: "fabrnetwork",
		AdminPassword: "s3nha",
		DefaultSeason: "2025",
		SessionTTL:    24 * time.Hour,
	}
	cat, err := catalog.Load()
	if err != nil {
		t.Fatal(err)
	}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	articles, err := service.NewArticleService(leagueAPI, events.Nop(), clock, logger)
	if err != nil {
		t.Fatal(err)
	}
	admin := NewAdminServer(
		service.NewAuthService(cfg, repository.NewSessionRepository(queries, logger), clock, logger),
		service.NewTeamService(leagueAPI, cfg, logger),
		service.NewPlayerService(leagueAPI, cat, cfg, logger),
		articles,
		service.NewSeasonService(leagueAPI,
			repository.NewDraftRepository(sqlDB, queries, logger),
			repository.NewRolloverRepository(queries, logger),
			cat, events.Nop(), rec, clock, logger),
		service.NewDashboardService(leagueAPI, cfg, logger),
		service.NewImportService(leagueAPI, logger),
		cat,
		logger,
	)

	ts := httptest.NewServer(admin.HTTPHandler(Options{
		Limiter:        middleware.NewLimiter(0.1, 3, clock),
		Metrics:        rec,
		DB:             sqlDB,
		AllowedOrigins: []string{"http://localhost:3000"},
	}))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &testEnv{url: ts.URL, client: &http.Client{Jar: jar}, league: upstream}
}

func call[Req, Res any](e *testEnv, method string, req *Req) (*Res, error) {
	c := connect.NewClient[Req, Res](e.client, e.url+ServicePath+method, connect.WithCodec(jsonCodec{}))
	res, err := c.CallUnary(context.Background(), connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	if _, err := call[LoginRequest, SessionResponse](e, "Login", &LoginRequest{Username: "fabrnetwork", Password: "s3nha"}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("err = nil, want %v", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("code = %v, want %v (%v)", got, code, err)
	}
}

func TestRoutesRequireSession(t *testing.T) {
	e := newEnv(t)

	_, err := call[SeasonRequest, TeamsResponse](e, "ListTeams", &SeasonRequest{})
	wantCode(t, err, connect.CodeUnauthenticated)

	resp, err := e.client.Post(e.url+ImportTeamsPath, "multipart/form-data", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("upload status = %d", resp.StatusCode)
	}
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{HealthPath, MetricsPath} {
		resp, err := e.client.Get(e.url + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d", path, resp.StatusCode)
		}
	}
}

func TestLoginSessionLogout(t *testing.T) {
	e := newEnv(t)

	_, err := call[LoginRequest, SessionResponse](e, "Login", &LoginRequest{Username: "fabrnetwork", Password: "nope"})
	wantCode(t, err, connect.CodeUnauthenticated)
	var cerr *connect.Error
	if errors.As(err, &cerr) && cerr.Message() != "Credenciais inválidas. Tente novamente." {
		t.Errorf("message = %q", cerr.Message())
	}

	first, err := call[LoginRequest, SessionResponse](e, "Login", &LoginRequest{Username: "fabrnetwork", Password: "s3nha"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Username != "fabrnetwork" || first.ExpiresAt != "2025-06-02T12:00:00Z" {
		t.Errorf("session = %+v", first)
	}

	again, err := call[LoginRequest, SessionResponse](e, "Login", &LoginRequest{})
	if err != nil {
		t.Fatalf("login while authenticated: %v", err)
	}
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("second login opened a new session (-first +again):\n%s", diff)
	}

	current, err := call[Empty, SessionResponse](e, "Session", &Empty{})
	if err != nil {
		t.Fatal(err)
	}
	if current.Username != "fabrnetwork" {
		t.Errorf("session = %+v", current)
	}

	if _, err := call[Empty, Empty](e, "Logout", &Empty{}); err != nil {
		t.Fatal(err)
	}
	_, err = call[Empty, SessionResponse](e, "Session", &Empty{})
	wantCode(t, err, connect.CodeUnauthenticated)
}

func TestLoginCookieAttributes(t *testing.T) {
	e := newEnv(t)
	req, _ := http.NewRequest(http.MethodPost, e.url+LoginProcedure, strings.NewReader(`{"username":"fabrnetwork","password":"s3nha"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cookie := resp.Header.Get("Set-Cookie")
	for _, want := range []string{"fabr_auth_token=", "Path=/", "Max-Age=86400", "HttpOnly", "SameSite=Strict"} {
		if !strings.Contains(cookie, want) {
			t.Errorf("Set-Cookie %q missing %q", cookie, want)
		}
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	e := newEnv(t)
	bad := &LoginRequest{Username: "fabrnetwork", Password: "x"}
	for i := 0; i < 3; i++ {
		_, err := call[LoginRequest, SessionResponse](e, "Login", bad)
		wantCode(t, err, connect.CodeUnauthenticated)
	}
	_, err := call[LoginRequest, SessionResponse](e, "Login", bad)
	wantCode(t, err, connect.CodeResourceExhausted)
}

func TestListTeamsUsesDefaultSeason(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	res, err := call[SeasonRequest, TeamsResponse](e, "ListTeams", &SeasonRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Teams) != 2 || res.Teams[0].Name != "Leões" {
		t.Errorf("teams = %+v", res.Teams)
	}
	seen := e.league.seen()
	if got := seen[len(seen)-1]; got != "GET /times?temporada=2025" {
		t.Errorf("upstream request = %s", got)
	}
}

func TestCreateTeamValidation(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	_, err := call[domain.Team, TeamResponse](e, "CreateTeam", &domain.Team{Abbreviation: "AGU"})
	wantCode(t, err, connect.CodeInvalidArgument)
	var cerr *connect.Error
	if errors.As(err, &cerr) && cerr.Meta().Get("Fabr-Field") != "nome" {
		t.Errorf("field = %q", cerr.Meta().Get("Fabr-Field"))
	}

	res, err := call[domain.Team, TeamResponse](e, "CreateTeam", &domain.Team{Name: " Águias ", Abbreviation: "AGU"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Team.ID != 3 {
		t.Errorf("team = %+v", res.Team)
	}
	var sent domain.Team
	if err := json.Unmarshal(e.league.lastBody("/time"), &sent); err != nil {
		t.Fatal(err)
	}
	if sent.Name != "Águias" || sent.Season != "2025" {
		t.Errorf("sent = %+v", sent)
	}
}

func TestUpstreamFailureIsUnavailable(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.league.failWith("/materias", http.StatusInternalServerError)

	_, err := call[Empty, ArticlesResponse](e, "ListArticles", &Empty{})
	wantCode(t, err, connect.CodeUnavailable)
	var cerr *connect.Error
	if errors.As(err, &cerr) && cerr.Message() != "Falha ao buscar matérias" {
		t.Errorf("message = %q", cerr.Message())
	}
}

func TestRolloverOverRPC(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	key := domain.DraftKey{CurrentSeason: "2025", TargetSeason: "2026"}

	_, err := call[TeamChangeRequest, DraftResponse](e, "AddTeamChange", &TeamChangeRequest{
		DraftKey: key,
		Change:   domain.TeamChange{TeamID: 1, Name: "Leões"},
	})
	wantCode(t, err, connect.CodeFailedPrecondition)

	draft, err := call[TeamChangeRequest, DraftResponse](e, "AddTeamChange", &TeamChangeRequest{
		DraftKey: key,
		Change:   domain.TeamChange{TeamID: 1, Name: "Leões FC", Color: "#ffcc00"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(draft.Draft.TeamChanges) != 1 || draft.Draft.Transfers == nil {
		t.Errorf("draft = %+v", draft.Draft)
	}

	_, err = call[DraftRequest, DraftResponse](e, "GetDraft", &DraftRequest{DraftKey: domain.DraftKey{CurrentSeason: "2025", TargetSeason: "2024"}})
	wantCode(t, err, connect.CodeInvalidArgument)

	result, err := call[DraftRequest, service.SubmitResult](e, "SubmitRollover", &DraftRequest{DraftKey: key})
	if err != nil {
		t.Fatal(err)
	}
	if result.Message != "Temporada 2026 iniciada com sucesso! 2 times e 1 jogadores criados." {
		t.Errorf("message = %q", result.Message)
	}

	var sent struct {
		TeamChanges []map[string]any `json:"timeChanges"`
		Transfers   []any            `json:"transferencias"`
	}
	if err := json.Unmarshal(e.league.lastBody("/iniciar-temporada/2026"), &sent); err != nil {
		t.Fatal(err)
	}
	wantChange := []map[string]any{{"timeId": 1.0, "nome": "Leões FC", "cor": "#ffcc00"}}
	if diff := cmp.Diff(wantChange, sent.TeamChanges); diff != "" {
		t.Errorf("timeChanges (-want +got):\n%s", diff)
	}

	history, err := call[Empty, RolloversResponse](e, "ListRollovers", &Empty{})
	if err != nil {
		t.Fatal(err)
	}
	if len(history.Rollovers) != 1 || history.Rollovers[0].TeamsCreated != 2 {
		t.Errorf("history = %+v", history.Rollovers)
	}

	after, err := call[DraftRequest, DraftResponse](e, "GetDraft", &DraftRequest{DraftKey: key})
	if err != nil {
		t.Fatal(err)
	}
	if len(after.Draft.TeamChanges) != 0 {
		t.Errorf("draft not cleared: %+v", after.Draft)
	}
}

func TestListProcessedGamesNull(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	res, err := call[Empty, json.RawMessage](e, "ListProcessedGames", &Empty{})
	if err != nil {
		t.Fatal(err)
	}
	if string(*res) != "[]" {
		t.Errorf("games = %s", *res)
	}
}

func multipartBody(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile(uploadField, filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write([]byte("nome;sigla\nLeões;LEO\n"))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestImportTeamsUpload(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	body, contentType := multipartBody(t, nil, "times.xlsx")
	resp, err := e.client.Post(e.url+ImportTeamsPath, contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK || string(out) != `{"importados":2}` {
		t.Fatalf("status = %d body = %s", resp.StatusCode, out)
	}
	if upload, _ := e.league.lastUpload(); upload == nil || upload.Filename != "times.xlsx" {
		t.Errorf("upload = %+v", upload)
	}
}

func TestUploadWithoutFile(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	body, contentType := multipartBody(t, map[string]string{"id_jogo": "7"}, "")
	resp, err := e.client.Post(e.url+StatisticsPath, contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(out), `"invalid_argument"`) {
		t.Errorf("status = %d body = %s", resp.StatusCode, out)
	}
	for _, r := range e.league.seen() {
		if strings.Contains(r, "atualizar-estatisticas") {
			t.Errorf("upstream called without a file: %s", r)
		}
	}
}

func TestReprocessForwardsForce(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	body, contentType := multipartBody(t, map[string]string{"id_jogo": "7", "data_jogo": "2025-05-10", "force": "true"}, "jogo.xlsx")
	resp, err := e.client.Post(e.url+ReprocessPath, contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK || string(out) != `{"ok":true,"force":true}` {
		t.Errorf("status = %d body = %s", resp.StatusCode, out)
	}
	if _, gameID := e.league.lastUpload(); gameID != "7" {
		t.Errorf("id_jogo = %q", gameID)
	}
}

func TestRPCsHaveDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	next := connect.UnaryFunc(func(ctx context.Context, _ connect.AnyRequest) (connect.AnyResponse, error) {
		deadline, ok = ctx.Deadline()
		return connect.NewResponse(&Empty{}), nil
	})

	start := time.Now()
	if _, err := withTimeout(time.Minute)(next)(context.Background(), connect.NewRequest(&Empty{})); err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("handler context has no deadline")
	}
	if d := deadline.Sub(start); d <= 0 || d > time.Minute {
		t.Errorf("deadline in %s, want within 1m", d)
	}
}
