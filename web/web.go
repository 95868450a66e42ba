// Package web provides the embedded web UI for rolling dice in a browser.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/dice-notation/pkg/dice"
	"github.com/lemonberrylabs/dice-notation/pkg/stats"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web UI pages.
type Handler struct {
	eval  *dice.Evaluator
	stats *stats.Store
	tmpl  *template.Template
}

// pageData is the data passed to index.html.
type pageData struct {
	Expression string
	Result     *rollView
	Error      string
	Stats      stats.Snapshot
	Examples   []string
}

type rollView struct {
	Display string
	Total   string
}

var examples = []string{"1d20 + 5", "4d6kh3", "2d20kl1", "3d6e6", "6d6p<3", "4d6mi2"}

// New creates a new web UI handler.
func New(ev *dice.Evaluator, st *stats.Store) *Handler {
	funcMap := template.FuncMap{
		"markup":     markup,
		"formatTime": formatTime,
		"uptime":     uptime,
	}
	return &Handler{
		eval:  ev,
		stats: st,
		tmpl: template.Must(
			template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/index.html"),
		),
	}
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.index)
	app.Post("/ui/roll", h.roll)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

func (h *Handler) render(c *fiber.Ctx, data pageData) error {
	data.Stats = h.stats.Snapshot()
	data.Examples = examples

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) index(c *fiber.Ctx) error {
	return h.render(c, pageData{Expression: c.Query("expression")})
}

func (h *Handler) roll(c *fiber.Ctx) error {
	expr := strings.TrimSpace(c.FormValue("expression"))
	if expr == "" {
		return h.render(c, pageData{Error: "Enter an expression to roll."})
	}

	res, err := h.eval.Roll(expr)
	h.stats.Record(res, err)
	if err != nil {
		return h.render(c, pageData{Expression: expr, Error: err.Error()})
	}

	return h.render(c, pageData{
		Expression: expr,
		Result:     &rollView{Display: res.Display, Total: dice.FormatTotal(res.Value)},
	})
}

// --- Template Helpers ---

// markup renders a display string as HTML, turning **x** into <strong> and
// ~~x~~ into <del>. Everything else is escaped.
func markup(display string) template.HTML {
	s := html.EscapeString(display)

	var b strings.Builder
	bold, strike := false, false
	for i := 0; i < len(s); i++ {
		if i+1 < len(s) {
			switch s[i : i+2] {
			case "**":
				b.WriteString(toggle("strong", &bold))
				i++
				continue
			case "~~":
				b.WriteString(toggle("del", &strike))
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	// Close anything left open so the page stays well formed.
	if bold {
		b.WriteString("</strong>")
	}
	if strike {
		b.WriteString("</del>")
	}
	return template.HTML(b.String())
}

func toggle(tag string, open *bool) string {
	*open = !*open
	if *open {
		return "<" + tag + ">"
	}
	return "</" + tag + ">"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func uptime(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	if d < time.Minute {
		return fmt.Sprintf("%ds", seconds)
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), seconds%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
