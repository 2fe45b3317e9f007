package httpapi

import (
	"context"
	"html/template"
	"net/http"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

type profileForm struct {
	First    string
	Last     string
	Position string
}

type boardPage struct {
	Title     string
	Board     usecase.Board
	Form      profileForm
	Positions []profile.Position
	Notice    string
	Error     string
}

func (h *Handler) newPage(board usecase.Board) boardPage {
	form := profileForm{Position: profile.PositionSkater.String()}
	if board.HasProfile {
		form = profileForm{
			First:    board.Profile.FirstName,
			Last:     board.Profile.LastName,
			Position: board.Profile.Position.String(),
		}
	}
	return boardPage{
		Title:     h.title,
		Board:     board,
		Form:      form,
		Positions: []profile.Position{profile.PositionSkater, profile.PositionGoalie},
	}
}

// renderBoard executes into a pooled buffer first so a template failure never
// leaves a half-written page behind.
func (h *Handler) renderBoard(ctx context.Context, w http.ResponseWriter, status int, page boardPage) {
	ctx, span := startSpan(ctx, "httpapi.renderBoard")
	defer span.End()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := boardTemplate.Execute(buf, page); err != nil {
		h.logger.ErrorContext(ctx, "render board failed", "error", err)
		writeInternalError(ctx, w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.B)
}

var boardTemplate = template.Must(template.New("board").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 1rem auto; padding: 0 1rem; }
.event-card { border: 1px solid #ccc; border-radius: 8px; padding: .75rem; margin: .5rem 0; }
.event-date-text { font-weight: 600; }
.my-status { margin: .25rem 0; color: #444; }
.notice { background: #e6f4ea; padding: .5rem; }
.error { background: #fdecea; padding: .5rem; }
.btn { padding: .35rem .75rem; }
.btn-cancel { background: #fdecea; }
#roster[hidden] { display: none; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{with .Notice}}<p class="notice">{{.}}</p>{{end}}
{{with .Error}}<p class="error" role="alert">{{.}}</p>{{end}}

<form method="post" action="/profile">
  <label>First <input name="first" value="{{.Form.First}}" required></label>
  <label>Last <input name="last" value="{{.Form.Last}}" required></label>
  <label>Position
    <select name="pos">
      {{$pos := .Form.Position}}{{range .Positions}}<option value="{{.}}"{{if eq .String $pos}} selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <button class="btn" type="submit">Save profile</button>
</form>

<p><a href="/">Refresh</a> · <a href="/calendar.ics">Add to calendar</a></p>

<div id="events">
{{if .Board.Message}}<div class="event-card">{{.Board.Message}}</div>{{end}}
{{$busy := .Board.Busy}}
{{range .Board.Cards}}
  <div class="event-card">
    <div class="event-date">
      <span class="event-date-text">{{.Session.DateText}}</span>
      <span class="event-time-text"> • {{.Session.TimeText}}</span>
    </div>
    <div class="event-counts">{{.CountsText}}</div>
    <div class="my-status">{{.StatusText}}</div>
    <div class="event-actions">
      <form method="post" action="/sessions/{{.Session.ID}}/rsvp" style="display:inline">
        <button class="btn{{if .Attending}} btn-cancel{{end}}" type="submit"{{if or $busy (not .CanToggle)}} disabled{{end}}>{{.ActionLabel}}</button>
      </form>
      <button class="btn btn-outline" type="button" data-event-id="{{.Session.ID}}" data-title="{{.Session.Label}}"{{if $busy}} disabled{{end}}>View Players</button>
    </div>
  </div>
{{end}}
</div>

<section id="roster" hidden>
  <h2>Players</h2>
  <p id="roster-subtitle"></p>
  <ul id="roster-list"></ul>
  <p id="roster-empty"></p>
  <button class="btn" type="button" id="roster-close">Close</button>
</section>

<script>
(function () {
  var panel = document.getElementById("roster");
  var list = document.getElementById("roster-list");
  var empty = document.getElementById("roster-empty");
  document.getElementById("roster-close").addEventListener("click", function () { panel.hidden = true; });
  document.querySelectorAll("button[data-event-id]").forEach(function (btn) {
    btn.addEventListener("click", function () {
      var id = btn.getAttribute("data-event-id");
      document.getElementById("roster-subtitle").textContent = btn.getAttribute("data-title");
      list.textContent = "";
      empty.textContent = "Loading...";
      panel.hidden = false;
      fetch("/sessions/" + encodeURIComponent(id) + "/attendees", { headers: { "Accept": "application/json" } })
        .then(function (res) { return res.json(); })
        .then(function (body) {
          if (body.error) { throw new Error(body.error.message); }
          var data = body.data || {};
          empty.textContent = data.message || "";
          (data.attendees || []).forEach(function (a) {
            var li = document.createElement("li");
            li.textContent = a.display + " (" + a.pos + ")";
            list.appendChild(li);
          });
        })
        .catch(function (err) { empty.textContent = "Could not load players: " + err.message; });
    });
  });
})();
</script>
</body>
</html>
`))
