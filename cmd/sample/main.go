// Command sample runs a small reports service built on jsonapi.
//
// Run:
//
//	go run ./cmd/sample
//	go run ./cmd/sample -config sample.yaml
//
// Then explore:
//
//	GET  http://localhost:8080/                 welcome envelope
//	GET  http://localhost:8080/reports          list reports (X-User header required)
//	POST http://localhost:8080/reports          create a report
//	GET  http://localhost:8080/reports/all      every report, full detail
//	GET  http://localhost:8080/me               current user
//	GET  http://localhost:8080/metrics          Prometheus metrics
//	GET  http://localhost:8080/debug/pprof/     profiling (debug: true only)
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bjaus/jsonapi"
	"github.com/bjaus/jsonapi/form"
	"github.com/bjaus/jsonapi/serial"
)

func main() {
	configFlag := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	cfg := jsonapi.DefaultConfig()
	boot, err := jsonapi.NewLogger(cfg.Log)
	if err != nil {
		panic(err)
	}

	if *configFlag != "" {
		loaded, err := jsonapi.LoadConfig(*configFlag)
		if err != nil {
			boot.Fatal("load config", zap.Error(err))
		}
		cfg = loaded
	}

	logger, err := jsonapi.NewLogger(cfg.Log)
	if err != nil {
		boot.Fatal("build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	r := newRouter(cfg, logger, reg, newStore())

	if err := r.ListenAndServe(ctx, cfg.Addr); err != nil {
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newRouter(cfg jsonapi.Config, logger *zap.Logger, reg *prometheus.Registry, st *store) *jsonapi.Router {
	r := jsonapi.New(
		jsonapi.WithDebugMode(cfg.Debug),
		jsonapi.WithLogger(logger),
		jsonapi.WithGuards(jsonapi.Recovery()),
	)

	r.Use(jsonapi.RequestID())
	r.Use(jsonapi.Logger(logger))
	r.Use(jsonapi.Metrics(reg))
	r.Use(headerAuth())
	r.Use(jsonapi.RateLimit(cfg.RateLimit))
	if cfg.BodyLimit > 0 {
		r.Use(jsonapi.BodyLimit(cfg.BodyLimit))
	}

	h := &handlers{
		store:  st,
		serial: newSerializers(cfg.Debug),
	}

	r.Handle("GET /{$}", h.home)
	r.Handle("/reports", h.reports,
		jsonapi.LoginRequired(jsonapi.WithLoginURL("/login")),
		jsonapi.RequireMethod([]string{http.MethodGet, http.MethodPost}),
		jsonapi.Form(reportForms, jsonapi.WithFormMethods(http.MethodGet, http.MethodPost), jsonapi.WithExtra(owner)),
	)
	r.Handle("GET /reports/all", h.allReports)
	r.Handle("GET /me", h.me, jsonapi.LoginRequired(jsonapi.WithLoginURL("/login")))
	r.Raw("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if cfg.Debug {
		r.Pprof("")
	}

	return r
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

// sessionUser is identified by the X-User header. Real services would check
// a session or token here.
type sessionUser struct {
	Name string
}

func (u sessionUser) IsAuthenticated() bool { return u.Name != "" }

func (u sessionUser) UserID() string { return u.Name }

func headerAuth() jsonapi.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if name := strings.TrimSpace(r.Header.Get("X-User")); name != "" {
				r = jsonapi.WithUser(r, sessionUser{Name: name})
			}
			next.ServeHTTP(w, r)
		})
	}
}

func owner(req *jsonapi.Request) map[string]any {
	u, ok := req.User().(sessionUser)
	if !ok {
		return nil
	}
	return map[string]any{"owner": u.Name}
}

// ---------------------------------------------------------------------------
// Domain
// ---------------------------------------------------------------------------

// Report is the core domain entity.
type Report struct {
	ID           xid.ID          `json:"id"`
	Title        string          `json:"title"`
	Owner        string          `json:"owner"`
	Score        decimal.Decimal `json:"score"`
	CreatedAt    time.Time       `json:"created_at"`
	EditPassword string          `json:"edit_password"`
}

// PK returns the report id.
func (r Report) PK() any { return r.ID.String() }

// Summary is a derived attribute exposed to serializers.
func (r Report) Summary() string {
	return r.Title + " (" + r.Score.StringFixed(1) + ")"
}

type store struct {
	mu      sync.RWMutex
	reports []Report
}

func newStore() *store {
	return &store{}
}

func (s *store) add(r Report) Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = xid.New()
	r.CreatedAt = time.Now().UTC()
	s.reports = append(s.reports, r)
	return r
}

func (s *store) byOwner(owner string, limit int) []Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Report, 0, len(s.reports))
	for _, r := range s.reports {
		if r.Owner == owner {
			out = append(out, r)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (s *store) all() []Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reports)
}

// ---------------------------------------------------------------------------
// Forms and serializers
// ---------------------------------------------------------------------------

// ReportForm validates report creation.
type ReportForm struct {
	Title string  `form:"title,required" minLength:"3" maxLength:"80"`
	Owner string  `form:"owner,required"`
	Score float64 `form:"score" minimum:"0" maximum:"100"`
}

// ListForm validates report listing filters.
type ListForm struct {
	Limit int `form:"limit" minimum:"1" maximum:"100"`
}

var reportForms = jsonapi.PerMethod(func(_ *jsonapi.Request, data map[string]any) map[string]jsonapi.Validator {
	return map[string]jsonapi.Validator{
		http.MethodGet:  form.New[ListForm](data),
		http.MethodPost: form.New[ReportForm](data),
	}
})

const modeFull serial.Mode = "full"

func newSerializers(debug bool) *serial.Registry {
	reg := serial.NewRegistry(serial.WithDebug(debug))
	serial.Register(reg, "", func(r Report, _ serial.Kwargs) (serial.Map, error) {
		return serial.Fields(r, "id", "title", "summary")
	})
	serial.Register(reg, modeFull, func(r Report, kw serial.Kwargs) (serial.Map, error) {
		m, err := reg.Model(r)
		if err != nil {
			return nil, err
		}
		if viewer, ok := kw["viewer"].(string); ok {
			m["mine"] = viewer == r.Owner
		}
		return m, nil
	})
	return reg
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

type handlers struct {
	store  *store
	serial *serial.Registry
}

func (h *handlers) home(*jsonapi.Request) (*jsonapi.Response, error) {
	return jsonapi.OK("Welcome", nil), nil
}

func (h *handlers) me(req *jsonapi.Request) (*jsonapi.Response, error) {
	u, _ := req.User().(sessionUser)
	return jsonapi.OK("", jsonapi.Body{"user": u.Name}), nil
}

func (h *handlers) reports(req *jsonapi.Request) (*jsonapi.Response, error) {
	v, _ := req.Form()
	u, _ := req.User().(sessionUser)

	switch f := v.(type) {
	case *form.Form[ReportForm]:
		in := f.Value()
		created := h.store.add(Report{
			Title: in.Title,
			Owner: in.Owner,
			Score: decimal.NewFromFloat(in.Score),
		})
		body, err := h.serial.One(created, modeFull, serial.Kwargs{"viewer": u.Name})
		if err != nil {
			return nil, err
		}
		resp := jsonapi.OK("Created", jsonapi.Body{"report": body})
		resp.Status = http.StatusCreated
		return resp, nil

	case *form.Form[ListForm]:
		list, err := h.serial.Many(h.store.byOwner(u.Name, f.Value().Limit), "", nil)
		if err != nil {
			return nil, err
		}
		return jsonapi.OK("", jsonapi.Body{"reports": list}), nil

	default:
		return jsonapi.BadRequest(nil), nil
	}
}

func (h *handlers) allReports(req *jsonapi.Request) (*jsonapi.Response, error) {
	kw := serial.Kwargs{}
	if u, ok := req.User().(sessionUser); ok {
		kw["viewer"] = u.Name
	}

	cur := serial.SerializeLazy(h.serial, slices.Values(h.store.all()), modeFull, kw)
	defer cur.Stop()

	out := make([]serial.Map, 0)
	for m, err := range cur.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return jsonapi.OK("", jsonapi.Body{"reports": out, "count": len(out)}), nil
}
