package web

import (
    "bufio"
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "net/url"
    "strconv"
    "strings"
    "testing"
    "time"

    "github.com/jaminalder/slide-tac-toe/internal/ai"
    "github.com/jaminalder/slide-tac-toe/internal/app"
    "github.com/jaminalder/slide-tac-toe/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
    t.Helper()
    s := app.NewService(app.Config{})
    h := NewServer(s, Options{})
    return s, h
}

func postForm(h http.Handler, path string, form url.Values, pid string) *httptest.ResponseRecorder {
    req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    req.Header.Set("Accept-Language", "en")
    if pid != "" {
        req.AddCookie(&http.Cookie{Name: playerCookie, Value: pid})
    }
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    return rr
}

func playerCookieFrom(rr *httptest.ResponseRecorder) string {
    for _, c := range rr.Result().Cookies() {
        if c.Name == playerCookie {
            return c.Value
        }
    }
    return ""
}

func TestIndexPage(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    body := rr.Body.String()
    if !strings.Contains(body, "<form") || !strings.Contains(body, "action=\"/game\"") {
        t.Fatalf("index should contain create form; got body: %q", body)
    }
    if !strings.Contains(body, "Jogo da Velha") {
        t.Fatalf("expected default language title, got %q", body)
    }
    if playerCookieFrom(rr) == "" {
        t.Fatalf("expected player cookie")
    }
}

func TestIndexFollowsAcceptLanguage(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/", nil)
    req.Header.Set("Accept-Language", "es-MX,es;q=0.9")
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if !strings.Contains(rr.Body.String(), "Tres en Raya") {
        t.Fatalf("expected spanish page, got %q", rr.Body.String())
    }
}

func TestHealthz(t *testing.T) {
    _, h := newTestServer(t)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
    if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
        t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
    }
}

func TestCreateRedirectsToGame(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("POST", "/game", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusSeeOther && rr.Code != http.StatusFound {
        t.Fatalf("expected redirect, got %d", rr.Code)
    }
    loc := rr.Result().Header.Get("Location")
    if !strings.HasPrefix(loc, "/game/") {
        t.Fatalf("expected redirect to /game/{id}, got %q", loc)
    }
}

func TestCreateUsesFormOptions(t *testing.T) {
    svc, h := newTestServer(t)
    rr := postForm(h, "/game", url.Values{"mode": {"cpu"}, "difficulty": {"hard"}}, "p1")
    id := strings.TrimPrefix(rr.Result().Header.Get("Location"), "/game/")
    gs, ok := svc.Get(id)
    if !ok {
        t.Fatalf("game %q not created", id)
    }
    if gs.Owner != "p1" || gs.Mode != app.ModeCPU || gs.Difficulty != ai.Hard {
        t.Fatalf("unexpected game %+v", gs)
    }
}

func TestGamePageSetsCookieAndClaims(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame("", app.Options{})

    req := httptest.NewRequest("GET", "/game/"+url.PathEscape(gs.ID), nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    playerID := playerCookieFrom(rr)
    if playerID == "" {
        t.Fatalf("expected player_id cookie to be set")
    }
    latest, ok := svc.Get(gs.ID)
    if !ok || latest.Owner != playerID {
        t.Fatalf("expected claim by %q, owner=%q", playerID, latest.Owner)
    }
    body := rr.Body.String()
    if !strings.Contains(body, "hx-ext=\"sse\"") || !strings.Contains(body, "/game/"+gs.ID+"/events") {
        t.Fatalf("expected SSE wiring in page; got body: %q", body)
    }
    if !strings.Contains(body, "/game/"+gs.ID+"/reset") {
        t.Fatalf("owner should see the restart control")
    }
}

func TestGamePageForSpectator(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame("p1", app.Options{})

    req := httptest.NewRequest("GET", "/game/"+gs.ID, nil)
    req.Header.Set("Accept-Language", "en")
    req.AddCookie(&http.Cookie{Name: playerCookie, Value: "p2"})
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    body := rr.Body.String()
    if !strings.Contains(body, "You are watching") || strings.Contains(body, "/reset") {
        t.Fatalf("expected spectator view, got %q", body)
    }
    if latest, _ := svc.Get(gs.ID); latest.Owner != "p1" {
        t.Fatalf("spectator must not take over, owner=%q", latest.Owner)
    }
}

func TestGamePageUnknown(t *testing.T) {
    _, h := newTestServer(t)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, httptest.NewRequest("GET", "/game/missing", nil))
    if rr.Code != http.StatusNotFound {
        t.Fatalf("expected 404, got %d", rr.Code)
    }
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame("p1", app.Options{Mode: app.ModePVP})

    rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"r": {"0"}, "c": {"0"}}, "p1")
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    body := rr.Body.String()
    if !strings.Contains(body, "id=\"board\"") {
        t.Fatalf("expected board fragment, got %q", body)
    }
    if !strings.Contains(body, "O to move") {
        t.Fatalf("expected turn status, got %q", body)
    }
    latest, _ := svc.Get(gs.ID)
    if latest.Game.Moves != 1 || latest.Game.Board[0] != domain.X {
        t.Fatalf("expected move applied, moves=%d", latest.Game.Moves)
    }
}

func TestPlayEndpointReportsErrors(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame("p1", app.Options{Mode: app.ModePVP})
    path := "/game/" + gs.ID + "/play"

    postForm(h, path, url.Values{"r": {"1"}, "c": {"1"}}, "p1")
    rr := postForm(h, path, url.Values{"r": {"1"}, "c": {"1"}}, "p1")
    if !strings.Contains(rr.Body.String(), "Cell is occupied") {
        t.Fatalf("expected occupied message, got %q", rr.Body.String())
    }
    rr = postForm(h, path, url.Values{"r": {"3"}, "c": {"x"}}, "p1")
    if !strings.Contains(rr.Body.String(), "Out of bounds") {
        t.Fatalf("expected bounds message, got %q", rr.Body.String())
    }
    rr = postForm(h, path, url.Values{"r": {"0"}, "c": {"0"}}, "p2")
    if !strings.Contains(rr.Body.String(), "You are watching") {
        t.Fatalf("expected spectator message, got %q", rr.Body.String())
    }
    if latest, _ := svc.Get(gs.ID); latest.Game.Moves != 1 {
        t.Fatalf("rejected moves must not apply, moves=%d", latest.Game.Moves)
    }
}

func TestPlayAgainstComputer(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame("p1", app.Options{Mode: app.ModeCPU, Difficulty: ai.Medium})

    rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"r": {"0"}, "c": {"0"}}, "p1")
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    latest, _ := svc.Get(gs.ID)
    if latest.Game.Moves != 2 || latest.Game.Board[4] != domain.O {
        t.Fatalf("expected computer to take the centre, board=%v", latest.Game.Board)
    }
}

func TestWinningLineHighlighted(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame("p1", app.Options{Mode: app.ModePVP})
    path := "/game/" + gs.ID + "/play"
    var rr *httptest.ResponseRecorder
    for _, idx := range []int{0, 3, 1, 4, 2} {
        rr = postForm(h, path, url.Values{"r": {strconv.Itoa(idx / 3)}, "c": {strconv.Itoa(idx % 3)}}, "p1")
    }
    body := rr.Body.String()
    if strings.Count(body, "cell win") != 3 {
        t.Fatalf("expected three highlighted cells, got %q", body)
    }
    if !strings.Contains(body, "X wins!") || !strings.Contains(body, "Play again") {
        t.Fatalf("expected win status, got %q", body)
    }
}

func TestResetEndpoint(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame("p1", app.Options{Mode: app.ModePVP})
    postForm(h, "/game/"+gs.ID+"/play", url.Values{"r": {"0"}, "c": {"0"}}, "p1")

    rr := postForm(h, "/game/"+gs.ID+"/reset", url.Values{"mode": {"cpu"}, "difficulty": {"easy"}}, "p1")
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    latest, _ := svc.Get(gs.ID)
    if latest.Game.Moves != 0 || latest.Mode != app.ModeCPU || latest.Difficulty != ai.Easy {
        t.Fatalf("unexpected state after reset: %+v", latest)
    }

    rr = postForm(h, "/game/"+gs.ID+"/reset", nil, "p2")
    if rr.Code != http.StatusForbidden {
        t.Fatalf("expected 403 for spectator reset, got %d", rr.Code)
    }
}

func TestStateEndpoint(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame("p1", app.Options{Mode: app.ModePVP})
    for _, idx := range []int{0, 1, 5, 3, 7, 8} {
        if _, err := svc.PlayIndex(gs.ID, "p1", idx); err != nil {
            t.Fatalf("play %d: %v", idx, err)
        }
    }

    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, httptest.NewRequest("GET", "/game/"+gs.ID+"/state", nil))
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    var st stateDTO
    if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
        t.Fatalf("decode: %v", err)
    }
    if st.Turn != "X" || st.Moves != 6 || st.Over {
        t.Fatalf("unexpected state %+v", st)
    }
    if st.Vanishing != 0 {
        t.Fatalf("X's oldest piece should be marked, got %d", st.Vanishing)
    }
    if got := st.Positions["O"]; len(got) != 3 || got[0] != 1 {
        t.Fatalf("unexpected O positions %v", got)
    }

    rr = httptest.NewRecorder()
    h.ServeHTTP(rr, httptest.NewRequest("GET", "/game/nope/state", nil))
    if rr.Code != http.StatusNotFound {
        t.Fatalf("expected 404, got %d", rr.Code)
    }
}

func TestSettingsSaveAndApply(t *testing.T) {
    _, h := newTestServer(t)
    rr := postForm(h, "/settings", url.Values{"theme": {"light"}, "lang": {"es"}, "mode": {"cpu"}, "difficulty": {"hard"}}, "p1")
    if rr.Code != http.StatusSeeOther {
        t.Fatalf("expected redirect, got %d", rr.Code)
    }

    req := httptest.NewRequest("GET", "/", nil)
    req.Header.Set("Accept-Language", "en")
    req.AddCookie(&http.Cookie{Name: playerCookie, Value: "p1"})
    rr = httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    body := rr.Body.String()
    if !strings.Contains(body, `class="theme-light"`) || !strings.Contains(body, "Tres en Raya") {
        t.Fatalf("saved preferences not applied: %q", body)
    }
    if !strings.Contains(body, `value="hard" selected`) {
        t.Fatalf("saved difficulty not preselected: %q", body)
    }
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
    _, h := newTestServer(t)
    reqCreate := httptest.NewRequest("POST", "/game", nil)
    rrCreate := httptest.NewRecorder()
    h.ServeHTTP(rrCreate, reqCreate)
    loc := rrCreate.Result().Header.Get("Location")
    if loc == "" {
        t.Fatalf("missing redirect location")
    }
    req := httptest.NewRequest("GET", loc+"/events", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    ct := rr.Result().Header.Get("Content-Type")
    if !strings.HasPrefix(ct, "text/event-stream") {
        t.Fatalf("expected text/event-stream, got %q", ct)
    }
}

func TestEventsStreamBoard(t *testing.T) {
    svc, h := newTestServer(t)
    srv := httptest.NewServer(h)
    defer srv.Close()
    gs, _ := svc.CreateGame("p1", app.Options{Mode: app.ModePVP})

    ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
    defer cancel()
    req, _ := http.NewRequestWithContext(ctx, "GET", srv.URL+"/game/"+gs.ID+"/events", nil)
    req.Header.Set("Accept", "text/event-stream")
    resp, err := http.DefaultClient.Do(req)
    if err != nil {
        t.Fatalf("connect: %v", err)
    }
    defer resp.Body.Close()

    if _, err := svc.PlayIndex(gs.ID, "p1", 4); err != nil {
        t.Fatalf("play: %v", err)
    }
    sc := bufio.NewScanner(resp.Body)
    var sawEvent bool
    for sc.Scan() {
        line := sc.Text()
        if line == "event: board" {
            sawEvent = true
            continue
        }
        if sawEvent && strings.Contains(line, `id="board"`) {
            if !strings.HasPrefix(line, "data: ") {
                t.Fatalf("unprefixed data line %q", line)
            }
            return
        }
    }
    t.Fatalf("no board event received (sawEvent=%v, err=%v)", sawEvent, sc.Err())
}
