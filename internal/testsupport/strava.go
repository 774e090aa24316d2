package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// FakeActivity is one activity served by FakeStrava.
type FakeActivity struct {
	ID        int64
	Name      string
	SportType string
	StartDate time.Time
	// ExportStatus, when non-zero, is returned instead of a GPX body.
	ExportStatus int
}

// FakeStrava is an httptest server speaking the subset of the Strava API and
// website used by stravagpx. It serves both the API and the export endpoint.
type FakeStrava struct {
	Server *httptest.Server

	mu          sync.Mutex
	activities  []FakeActivity
	token       string
	cookie      string
	exports     []int64
	pageFetches int
}

// NewFakeStrava starts a server listing activities in the given order.
func NewFakeStrava(t testing.TB, activities ...FakeActivity) *FakeStrava {
	t.Helper()

	fake := &FakeStrava{activities: activities}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/athlete", fake.handleAthlete)
	mux.HandleFunc("GET /api/v3/athlete/activities", fake.handleActivities)
	mux.HandleFunc("GET /activities/{id}/export_gpx", fake.handleExport)
	fake.Server = httptest.NewServer(mux)
	t.Cleanup(fake.Server.Close)
	return fake
}

// APIBaseURL is the API root to hand to strava.WithAPIBaseURL.
func (f *FakeStrava) APIBaseURL() string { return f.Server.URL + "/api/v3" }

// WebBaseURL is the website root to hand to strava.WithWebBaseURL.
func (f *FakeStrava) WebBaseURL() string { return f.Server.URL }

// RequireToken makes API calls fail with 401 unless the bearer token matches.
func (f *FakeStrava) RequireToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

// RequireSessionCookie makes exports fail with 401 unless _strava4_session matches.
func (f *FakeStrava) RequireSessionCookie(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cookie = value
}

// Exports returns the activity ids whose export was requested, in order.
func (f *FakeStrava) Exports() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.exports...)
}

// PageFetches returns how many activity pages were requested.
func (f *FakeStrava) PageFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageFetches
}

// GPX returns the body served for an activity.
func GPX(id int64) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><gpx creator="StravaGPX"><trk><name>%d</name></trk></gpx>`, id)
}

func (f *FakeStrava) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token == "" || r.Header.Get("Authorization") == "Bearer "+f.token
}

func (f *FakeStrava) handleAthlete(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Authorization Error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": 1, "firstname": "Test", "lastname": "Athlete"})
}

func (f *FakeStrava) handleActivities(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Authorization Error"})
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 || perPage < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad paging"})
		return
	}

	f.mu.Lock()
	f.pageFetches++
	start := (page - 1) * perPage
	var batch []map[string]any
	for i := start; i < len(f.activities) && i < start+perPage; i++ {
		a := f.activities[i]
		batch = append(batch, map[string]any{
			"id":               a.ID,
			"name":             a.Name,
			"sport_type":       a.SportType,
			"start_date":       a.StartDate.UTC().Format(time.RFC3339),
			"start_date_local": a.StartDate.Format(time.RFC3339),
		})
	}
	f.mu.Unlock()

	if batch == nil {
		batch = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, batch)
}

func (f *FakeStrava) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	f.exports = append(f.exports, id)
	wantCookie := f.cookie
	status := http.StatusNotFound
	for _, a := range f.activities {
		if a.ID == id {
			status = a.ExportStatus
			if status == 0 {
				status = http.StatusOK
			}
			break
		}
	}
	f.mu.Unlock()

	if wantCookie != "" {
		cookie, err := r.Cookie("_strava4_session")
		if err != nil || cookie.Value != wantCookie {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/gpx+xml")
	_, _ = w.Write([]byte(GPX(id)))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
