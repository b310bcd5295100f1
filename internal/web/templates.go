package web

import (
    "bytes"
    "html/template"
    "log"
    "net/http"

    "github.com/google/uuid"

    "github.com/jaminalder/slide-tac-toe/internal/i18n"
)

type templates struct {
    index    *template.Template
    game     *template.Template
    settings *template.Template
    board    *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "t": i18n.T,
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(baseTemplate))
    // The board is defined in the shared set so pages can include it.
    template.Must(base.New("board").Parse(boardTemplate))
    page := func(content string) *template.Template {
        return template.Must(template.Must(base.Clone()).New("content").Parse(content))
    }
    // Standalone board template used for fragment rendering.
    board := template.Must(template.New("board").Funcs(funcs()).Parse(boardTemplate))
    return &templates{
        index:    page(indexTemplate),
        game:     page(gameTemplate),
        settings: page(settingsTemplate),
        board:    board,
    }
}

func renderTemplate(t *template.Template, name string, data any) []byte {
    var buf bytes.Buffer
    var err error
    if name == "" {
        err = t.Execute(&buf, data)
    } else {
        err = t.ExecuteTemplate(&buf, name, data)
    }
    if err != nil {
        log.Printf("render %s: %v", t.Name(), err)
    }
    return buf.Bytes()
}

const baseTemplate = `<!doctype html><html lang="{{.Lang}}"><head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>{{t .Lang "title"}}</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<style>
body { font-family: system-ui, sans-serif; max-width: 28rem; margin: 2rem auto; padding: 0 1rem; }
body.theme-dark { background: #111827; color: #f3f4f6; }
body.theme-light { background: #f9fafb; color: #111827; }
nav { display: flex; justify-content: space-between; margin-bottom: 1.5rem; }
a { color: inherit; }
.grid { display: grid; grid-template-columns: repeat(3, 5rem); gap: .4rem; }
.grid form { margin: 0; }
.cell { width: 5rem; height: 5rem; font-size: 2.4rem; font-weight: 700; }
.cell.win { background: #22c55e; color: #fff; }
.cell.fading { opacity: .4; }
.alert { color: #ef4444; }
.muted, .rule { opacity: .7; font-size: .9rem; }
</style>
</head><body class="theme-{{.Theme}}">
<nav><a href="/">{{t .Lang "title"}}</a><a href="/settings">{{t .Lang "settings"}}</a></nav>
{{template "content" .}}
</body></html>`

const indexTemplate = `<h1>{{t .Lang "title"}}</h1>
<p>{{t .Lang "chooseMode"}}</p>
<form action="/game" method="post">
  <fieldset>
    <label><input type="radio" name="mode" value="pvp"{{if eq .Prefs.Mode "pvp"}} checked{{end}}> {{t .Lang "twoPlayers"}}</label>
    <p class="muted">{{t .Lang "twoPlayersDesc"}}</p>
    <label><input type="radio" name="mode" value="cpu"{{if eq .Prefs.Mode "cpu"}} checked{{end}}> {{t .Lang "vsCpu"}}</label>
    <p class="muted">{{t .Lang "vsCpuDesc"}}</p>
    <select name="difficulty">
      {{range .Difficulties}}<option value="{{.}}"{{if eq $.Prefs.Difficulty .}} selected{{end}}>{{t $.Lang (print .)}}</option>{{end}}
    </select>
  </fieldset>
  <button type="submit">{{t .Lang "start"}}</button>
</form>
<p class="rule">{{t .Lang "rule"}}</p>`

const gameTemplate = `<div hx-ext="sse" sse-connect="/game/{{.Board.ID}}/events">
  <div sse-swap="board" hx-target="#board" hx-swap="outerHTML">{{template "board" .Board}}</div>
</div>
{{if eq .Board.Mode "pvp"}}<p class="muted">{{t .Lang "localInfo"}}</p>{{end}}
<p><a href="/">{{t .Lang "back"}}</a></p>`

const settingsTemplate = `<h1>{{t .Lang "settings"}}</h1>
<form action="/settings" method="post">
  <label>{{t .Lang "theme"}}
    <select name="theme">
      <option value="light"{{if eq .Prefs.Theme "light"}} selected{{end}}>{{t .Lang "themeLight"}}</option>
      <option value="dark"{{if eq .Prefs.Theme "dark"}} selected{{end}}>{{t .Lang "themeDark"}}</option>
    </select>
  </label>
  <label>{{t .Lang "language"}}
    <select name="lang">
      {{range .Langs}}<option value="{{.}}"{{if eq $.Prefs.Lang .}} selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <label>{{t .Lang "chooseMode"}}
    <select name="mode">
      <option value="pvp"{{if eq .Prefs.Mode "pvp"}} selected{{end}}>{{t .Lang "twoPlayers"}}</option>
      <option value="cpu"{{if eq .Prefs.Mode "cpu"}} selected{{end}}>{{t .Lang "vsCpu"}}</option>
    </select>
  </label>
  <select name="difficulty">
    {{range .Difficulties}}<option value="{{.}}"{{if eq $.Prefs.Difficulty .}} selected{{end}}>{{t $.Lang (print .)}}</option>{{end}}
  </select>
  <button type="submit">{{t .Lang "save"}}</button>
</form>
<p><a href="/">{{t .Lang "back"}}</a></p>`

const boardTemplate = `<div id="board">
  <p class="status">{{.Status}}</p>
  {{if .Error}}<div class="alert" role="alert">{{.Error}}</div>{{end}}
  <div class="grid">
  {{range .Cells}}
    <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
      <input type="hidden" name="r" value="{{.Row}}">
      <input type="hidden" name="c" value="{{.Col}}">
      <button type="submit" class="cell{{if .Win}} win{{end}}{{if .Fading}} fading{{end}}"{{if not .Playable}} disabled{{end}}>{{.Mark}}</button>
    </form>
  {{end}}
  </div>
  {{if .Controls}}
  <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit">{{if .Over}}{{t .Lang "playAgain"}}{{else}}{{t .Lang "restart"}}{{end}}</button>
  </form>
  {{else}}
  <p class="muted">{{t .Lang "spectator"}}</p>
  {{end}}
  <p class="rule">{{t .Lang "rule"}}</p>
</div>`

const playerCookie = "player_id"

// ensurePlayerCookie returns the player id, issuing a new one when missing.
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
    if v := playerID(r); v != "" {
        return v
    }
    v := uuid.NewString()
    http.SetCookie(w, &http.Cookie{Name: playerCookie, Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
    return v
}

func playerID(r *http.Request) string {
    if c, err := r.Cookie(playerCookie); err == nil {
        return c.Value
    }
    return ""
}
