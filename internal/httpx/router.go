package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/gfranca/leadboard/internal/dataset"
	"github.com/gfranca/leadboard/internal/ingest"
	"github.com/gfranca/leadboard/internal/insights"
	"github.com/gfranca/leadboard/internal/models"
	"github.com/gfranca/leadboard/internal/obs"
	"github.com/gfranca/leadboard/internal/pipeline"
	"github.com/gfranca/leadboard/internal/store"
	"github.com/gfranca/leadboard/internal/utils"
)

const (
	defaultTopN = 5
	maxTopN     = 40
)

type router struct {
	log       *slog.Logger
	st        *store.SessionStore
	pl        *pipeline.Pipeline
	maxUpload int64
}

func NewRouter(log *slog.Logger, st *store.SessionStore, pl *pipeline.Pipeline, maxUpload int64, origins []string) http.Handler {
	rt := &router{log: log, st: st, pl: pl, maxUpload: maxUpload}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Session-ID"},
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", obs.Handler())

	mux.Post("/session/upload", rt.upload)
	mux.Get("/session/options", rt.options)
	mux.Get("/dashboard", rt.dashboard)

	return mux
}

type fileResult struct {
	Name     string           `json:"name"`
	Kind     string           `json:"kind"`
	Rows     int              `json:"rows"`
	Warnings []models.Warning `json:"warnings,omitempty"`
}

type uploadResponse struct {
	SessionID string       `json:"session_id"`
	Files     []fileResult `json:"files"`
}

func (rt *router) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUpload)
	if err := r.ParseMultipartForm(rt.maxUpload); err != nil {
		http.Error(w, "bad multipart body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id := sessionID(r)
	if id == "" {
		id = rt.st.Create()
	} else if _, ok := rt.st.Snapshot(id); !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	resp := uploadResponse{SessionID: id}
	for _, fh := range r.MultipartForm.File["files"] {
		kind := ingest.Classify(fh.Filename)
		obs.UploadsTotal.WithLabelValues(kind.String()).Inc()
		res := fileResult{Name: fh.Filename, Kind: kind.String()}

		if kind == ingest.KindUnrecognized {
			res.Warnings = append(res.Warnings, models.Warnf(models.WarnUnrecognizedFile, "filename %q matches no known export, file skipped", fh.Filename))
			resp.Files = append(resp.Files, res)
			continue
		}

		f, err := fh.Open()
		if err != nil {
			// upstream file-read errors are the only hard failures
			http.Error(w, "open upload: "+err.Error(), http.StatusBadRequest)
			return
		}
		switch kind {
		case ingest.KindLead:
			rows, warns, err := ingest.Leads(f)
			f.Close()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			rt.st.PutLeads(id, rows)
			res.Rows, res.Warnings = len(rows), warns
		case ingest.KindPlainSpend:
			rows, warns, err := ingest.PlainSpend(f)
			f.Close()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			rt.st.PutSpend(id, rows)
			res.Rows, res.Warnings = len(rows), warns
		case ingest.KindTaggedSpend:
			rows, warns, err := ingest.TaggedSpend(f)
			f.Close()
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			rt.st.PutTagged(id, rows)
			res.Rows, res.Warnings = len(rows), warns
		}
		resp.Files = append(resp.Files, res)
	}
	writeJSON(w, resp)
}

type optionsResponse struct {
	Teams      []string `json:"teams"`
	Products   []string `json:"products"`
	Agreements []string `json:"agreements"`
	Stages     []string `json:"stages"`
	Channels   []string `json:"channels"`
	MinDate    string   `json:"min_date,omitempty"`
	MaxDate    string   `json:"max_date,omitempty"`
}

// options reports the distinct lead dimension values the UI shell builds its
// sidebar filters from.
func (rt *router) options(w http.ResponseWriter, r *http.Request) {
	snap, ok := rt.st.Snapshot(sessionID(r))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	teams := map[string]struct{}{}
	products := map[string]struct{}{}
	agreements := map[string]struct{}{}
	stages := map[string]struct{}{}
	channels := map[string]struct{}{}
	var minD, maxD time.Time
	for _, l := range snap.Leads {
		teams[l.Team] = struct{}{}
		products[l.Product] = struct{}{}
		agreements[l.Agreement] = struct{}{}
		stages[l.Stage] = struct{}{}
		channels[l.Origin] = struct{}{}
		if minD.IsZero() || l.Date.Before(minD) {
			minD = l.Date
		}
		if l.Date.After(maxD) {
			maxD = l.Date
		}
	}
	resp := optionsResponse{
		Teams:      sortedKeys(teams),
		Products:   sortedKeys(products),
		Agreements: sortedKeys(agreements),
		Stages:     sortedKeys(stages),
		Channels:   sortedKeys(channels),
	}
	if !minD.IsZero() {
		resp.MinDate = minD.Format("2006-01-02")
		resp.MaxDate = maxD.Format("2006-01-02")
	}
	writeJSON(w, resp)
}

type dashboardResponse struct {
	Filter   models.FilterSet `json:"filter"`
	Dataset  dataset.Dataset  `json:"dataset"`
	Report   insights.Report  `json:"report"`
	Warnings []models.Warning `json:"warnings,omitempty"`
}

func (rt *router) dashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := rt.st.Snapshot(sessionID(r))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	if len(snap.Leads) == 0 || len(snap.Spend) == 0 {
		http.Error(w, "lead and spend exports are required before querying the dashboard", http.StatusUnprocessableEntity)
		return
	}

	q := r.URL.Query()
	f := models.FilterSet{
		Teams:      csvList(q.Get("team")),
		Products:   csvList(q.Get("product")),
		Agreements: csvList(q.Get("agreement")),
		Stages:     csvList(q.Get("stage")),
		Channels:   csvList(q.Get("channel")),
	}
	f.From, f.To = dateRange(q.Get("from"), q.Get("to"), snap.Leads)
	f.BusinessDays, _ = strconv.ParseBool(q.Get("business_days"))

	topN := atoiDef(q.Get("top_n"), defaultTopN)
	if topN < 1 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}
	byCampaign := q.Get("mode") == "campaign"

	start := time.Now()
	ds, warns := rt.pl.Run(pipeline.Tables(snap), f)
	obs.PipelineRuns.Inc()
	obs.PipelineDuration.Observe(time.Since(start).Seconds())
	for _, wr := range warns {
		obs.PipelineWarnings.WithLabelValues(string(wr.Kind)).Inc()
	}

	writeJSON(w, dashboardResponse{
		Filter:   f,
		Dataset:  ds,
		Report:   insights.Build(ds, topN, byCampaign),
		Warnings: warns,
	})
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get("X-Session-ID"); id != "" {
		return id
	}
	return r.URL.Query().Get("session")
}

// dateRange defaults the inclusive range to the lead table's own span, the
// way the UI shell seeds its date pickers.
func dateRange(from, to string, leads []models.Lead) (time.Time, time.Time) {
	f, fok := ingest.ParseDate(from)
	t, tok := ingest.ParseDate(to)
	if fok && tok {
		return f, t
	}
	var minD, maxD time.Time
	for _, l := range leads {
		if minD.IsZero() || l.Date.Before(minD) {
			minD = l.Date
		}
		if l.Date.After(maxD) {
			maxD = l.Date
		}
	}
	if !fok {
		f = minD
	}
	if !tok {
		t = maxD
	}
	return f, t
}

func csvList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
