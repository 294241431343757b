package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

type step struct {
	StepID          int    `json:"step_id"`
	Title           string `json:"title"`
	Action          string `json:"action"`
	ExpectedOutcome string `json:"expected_outcome,omitempty"`
}

type usage struct {
	TimesUsed int       `json:"times_used"`
	LastUsed  time.Time `json:"last_used,omitempty"`
}

type playbook struct {
	ID          string    `json:"playbook_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Tags        []string  `json:"tags"`
	Steps       []step    `json:"steps"`
	Outcome     string    `json:"outcome,omitempty"`
	Usage       usage     `json:"usage"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type scoredPlaybook struct {
	playbook
	Similarity float64 `json:"similarity"`
}

type guidanceResult struct {
	PlaybookID      string `json:"playbookId"`
	PlaybookTitle   string `json:"playbookTitle"`
	TriggerTitle    string `json:"triggerTitle"`
	Action          string `json:"action"`
	ExpectedOutcome string `json:"expectedOutcome,omitempty"`
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Total   int    `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}

type store struct {
	mu        sync.Mutex
	nextID    int
	playbooks map[string]*playbook
}

func newStore() *store {
	now := time.Now().UTC()
	s := &store{nextID: 100, playbooks: map[string]*playbook{}}
	for _, pb := range []playbook{
		{
			ID: "PB-001", Title: "VPN tunnel drops for remote staff", Priority: "High",
			Description: "Remote users lose the VPN connection after a few minutes or cannot connect at all.",
			Tags:        []string{"vpn", "network", "remote"},
			Steps: []step{
				{StepID: 1, Title: "Check client version", Action: "Confirm the VPN client is on the supported release.", ExpectedOutcome: "Client matches the supported version."},
				{StepID: 2, Title: "Restart the tunnel", Action: "Restart the VPN gateway service for the affected region.", ExpectedOutcome: "New sessions stay connected."},
			},
			Outcome: "Users reconnect and stay connected.", Usage: usage{TimesUsed: 12},
		},
		{
			ID: "PB-002", Title: "Outlook cannot reach the mailbox", Priority: "Medium",
			Description: "Outlook shows disconnected or keeps prompting for a password.",
			Tags:        []string{"email", "outlook"},
			Steps: []step{
				{StepID: 1, Title: "Check service health", Action: "Review the mail service health dashboard for an active outage."},
				{StepID: 2, Title: "Rebuild the profile", Action: "Create a new Outlook profile and reconnect the mailbox.", ExpectedOutcome: "Mailbox syncs."},
			},
			Usage: usage{TimesUsed: 4},
		},
		{
			ID: "PB-003", Title: "DNS resolution failures", Priority: "Critical",
			Description: "Internal host names fail to resolve from the office network.",
			Tags:        []string{"dns", "network"},
			Steps: []step{
				{StepID: 1, Title: "Identify the root cause", Action: "Query each resolver directly and compare answers to find the failing one."},
				{StepID: 2, Title: "Flush caches", Action: "Flush the resolver cache and restart the DNS service.", ExpectedOutcome: "Names resolve consistently."},
			},
		},
		{
			ID: "PB-004", Title: "Printer offline on floor 3", Priority: "Low",
			Description: "Jobs stay queued and the printer reports offline.",
			Tags:        []string{"printer", "hardware"},
			Steps: []step{
				{StepID: 1, Title: "Power cycle", Action: "Power cycle the printer and clear the spooler queue."},
			},
			Usage: usage{TimesUsed: 1},
		},
	} {
		pb.CreatedAt, pb.UpdatedAt = now, now
		s.playbooks[pb.ID] = &pb
	}
	return s
}

func (s *store) list() []playbook {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]playbook, 0, len(s.playbooks))
	for _, pb := range s.playbooks {
		out = append(out, *pb)
	}
	slices.SortFunc(out, func(a, b playbook) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	s := newStore()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /v1/playbooks", func(w http.ResponseWriter, _ *http.Request) {
		all := s.list()
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: all, Total: len(all)})
	})

	mux.HandleFunc("POST /v1/playbooks", func(w http.ResponseWriter, r *http.Request) {
		var pb playbook
		if err := json.NewDecoder(r.Body).Decode(&pb); err != nil || strings.TrimSpace(pb.Title) == "" {
			writeJSON(w, http.StatusBadRequest, envelope{Message: "title is required"})
			return
		}
		s.mu.Lock()
		s.nextID++
		pb.ID = fmt.Sprintf("PB-%03d", s.nextID)
		pb.CreatedAt = time.Now().UTC()
		pb.UpdatedAt = pb.CreatedAt
		s.playbooks[pb.ID] = &pb
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, envelope{Success: true, Data: pb})
	})

	mux.HandleFunc("GET /v1/playbooks/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		pb, ok := s.playbooks[r.PathValue("id")]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, envelope{Message: "playbook not found"})
			return
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: pb})
	})

	mux.HandleFunc("PUT /v1/playbooks/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in playbook
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid body"})
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		pb, ok := s.playbooks[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, envelope{Message: "playbook not found"})
			return
		}
		in.ID, in.Usage, in.CreatedAt, in.UpdatedAt = pb.ID, pb.Usage, pb.CreatedAt, time.Now().UTC()
		*pb = in
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: pb})
	})

	mux.HandleFunc("DELETE /v1/playbooks/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		id := r.PathValue("id")
		if _, ok := s.playbooks[id]; !ok {
			writeJSON(w, http.StatusNotFound, envelope{Message: "playbook not found"})
			return
		}
		delete(s.playbooks, id)
		writeJSON(w, http.StatusOK, envelope{Success: true})
	})

	mux.HandleFunc("POST /v1/playbooks/{id}/increment-usage", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		pb, ok := s.playbooks[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, envelope{Message: "playbook not found"})
			return
		}
		pb.Usage.TimesUsed++
		pb.Usage.LastUsed = time.Now().UTC()
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: pb})
	})

	mux.HandleFunc("GET /v1/playbooks/search", func(w http.ResponseWriter, r *http.Request) {
		tags := splitCSV(r.URL.Query().Get("tags"))
		priority := r.URL.Query().Get("priority")
		var out []playbook
		for _, pb := range s.list() {
			if matchesFilters(pb, priority, tags) {
				out = append(out, pb)
			}
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: out, Total: len(out)})
	})

	mux.HandleFunc("GET /v1/playbooks/search/vector", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		topK := atoiDefault(q.Get("topK"), 5)
		minScore, _ := strconv.ParseFloat(q.Get("minScore"), 64)
		hits := s.similar(q.Get("query"), q.Get("priority"), splitCSV(q.Get("tags")), minScore, topK)
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: hits, Total: len(hits)})
	})

	mux.HandleFunc("GET /v1/playbooks/search/hybrid", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		hits := s.similar(q.Get("query"), q.Get("priority"), splitCSV(q.Get("tags")), 0, atoiDefault(q.Get("maxResults"), 10))
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: hits, Total: len(hits)})
	})

	mux.HandleFunc("POST /v1/ai/playbook-recommender/search-guidance", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlaybookIDs      []string `json:"playbookIds"`
			GuidanceQuestion string   `json:"guidanceQuestion"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid body"})
			return
		}
		var results []guidanceResult
		for _, id := range req.PlaybookIDs {
			s.mu.Lock()
			pb, ok := s.playbooks[id]
			s.mu.Unlock()
			if !ok {
				continue
			}
			for _, st := range pb.Steps {
				if overlap(tokens(req.GuidanceQuestion), tokens(st.Title+" "+st.Action)) > 0 {
					results = append(results, guidanceResult{
						PlaybookID: pb.ID, PlaybookTitle: pb.Title, TriggerTitle: st.Title,
						Action: st.Action, ExpectedOutcome: st.ExpectedOutcome,
					})
				}
			}
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: results, Total: len(results)})
	})

	logger := log.New(log.Writer(), "backend-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           logRequests(logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

// similar scores playbooks by token overlap with the query.
func (s *store) similar(query, priority string, tags []string, minScore float64, limit int) []scoredPlaybook {
	qt := tokens(query)
	var hits []scoredPlaybook
	for _, pb := range s.list() {
		if !matchesFilters(pb, priority, tags) {
			continue
		}
		doc := tokens(pb.Title + " " + pb.Description + " " + strings.Join(pb.Tags, " "))
		score := overlap(qt, doc)
		if score > 0 && score >= minScore {
			hits = append(hits, scoredPlaybook{playbook: pb, Similarity: score})
		}
	}
	slices.SortStableFunc(hits, func(a, b scoredPlaybook) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return 0
		}
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func matchesFilters(pb playbook, priority string, tags []string) bool {
	if priority != "" && !strings.EqualFold(pb.Priority, priority) {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if slices.ContainsFunc(pb.Tags, func(have string) bool { return strings.EqualFold(have, t) }) {
			return true
		}
	}
	return false
}

func tokens(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, f := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if len(f) > 2 {
			out[f] = struct{}{}
		}
	}
	return out
}

// overlap is the share of query tokens present in the document.
func overlap(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	hit := 0
	for t := range query {
		if _, ok := doc[t]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(query))
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func atoiDefault(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
