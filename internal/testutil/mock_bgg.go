// Package testutil provides testing utilities for the BGG client.
package testutil

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MockGame is a catalog entry served by MockCatalog.
type MockGame struct {
	ID         string
	Name       string
	Year       string // empty omits <yearpublished>
	Categories []string
	Mechanics  []string
}

// MockResponse defines a canned response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// RecordedRequest is a request seen by the mock, with its arrival time.
type RecordedRequest struct {
	Path  string
	Query url.Values
	At    time.Time
}

// MockCatalog is a configurable mock of the BGG XML API 2 serving the
// /collection and /thing endpoints.
type MockCatalog struct {
	server *httptest.Server

	mu          sync.RWMutex
	games       map[string]MockGame
	collections map[string][]string
	queued      map[string]int
	handlers    map[string]http.HandlerFunc
	requests    []RecordedRequest
}

// NewMockCatalog starts a mock catalog server.
func NewMockCatalog() *MockCatalog {
	mock := &MockCatalog{
		games:       make(map[string]MockGame),
		collections: make(map[string][]string),
		queued:      make(map[string]int),
		handlers:    make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Path:  r.URL.Path,
			Query: r.URL.Query(),
			At:    time.Now(),
		})
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case "/collection":
			mock.serveCollection(w, r)
		case "/thing":
			mock.serveThing(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	return mock
}

// URL returns the base URL to configure the client with.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// Reset clears recorded requests and pending queued responses.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.queued = make(map[string]int)
}

// AddGame registers games for /thing lookups.
func (m *MockCatalog) AddGame(games ...MockGame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range games {
		m.games[g.ID] = g
	}
}

// SetCollection sets the ids owned by username, in listing order. Ids
// without a registered game are listed with a placeholder name. Users never
// set here are unknown and get the invalid-username <errors> envelope.
func (m *MockCatalog) SetCollection(username string, ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[username] = ids
}

// SetQueued makes the next n collection requests for username answer with
// the queued message envelope.
func (m *MockCatalog) SetQueued(username string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[username] = n
}

// SetHandler overrides the handler for a path.
func (m *MockCatalog) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockCatalog) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// Requests returns a copy of all recorded requests.
func (m *MockCatalog) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests received.
func (m *MockCatalog) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// RequestCountFor returns the number of requests received for a path.
func (m *MockCatalog) RequestCountFor(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (m *MockCatalog) serveCollection(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")

	m.mu.Lock()
	if m.queued[username] > 0 {
		m.queued[username]--
		m.mu.Unlock()
		writeXML(w, http.StatusAccepted, QueuedXML())
		return
	}
	ids, known := m.collections[username]
	if !known {
		m.mu.Unlock()
		writeXML(w, http.StatusOK, ErrorsXML(InvalidUsernameMessage))
		return
	}
	games := make([]MockGame, 0, len(ids))
	for _, id := range ids {
		g, ok := m.games[id]
		if !ok {
			g = MockGame{ID: id, Name: "Game " + id}
		}
		games = append(games, g)
	}
	m.mu.Unlock()

	writeXML(w, http.StatusOK, CollectionXML(games...))
}

func (m *MockCatalog) serveThing(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("id"), ",")

	m.mu.RLock()
	games := make([]MockGame, 0, len(ids))
	for _, id := range ids {
		if g, ok := m.games[id]; ok {
			games = append(games, g)
		}
	}
	m.mu.RUnlock()

	writeXML(w, http.StatusOK, ThingXML(games...))
}

func writeXML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// CollectionXML renders a collection listing document.
func CollectionXML(games ...MockGame) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="utf-8" standalone="yes"?>`+"\n")
	fmt.Fprintf(&b, `<items totalitems="%d" termsofuse="https://boardgamegeek.com/xmlapi/termsofuse">`+"\n", len(games))
	for _, g := range games {
		fmt.Fprintf(&b, `  <item objecttype="thing" objectid="%s" subtype="boardgame">`+"\n", escape(g.ID))
		fmt.Fprintf(&b, `    <name sortindex="1">%s</name>`+"\n", escape(g.Name))
		if g.Year != "" {
			fmt.Fprintf(&b, `    <yearpublished>%s</yearpublished>`+"\n", escape(g.Year))
		}
		b.WriteString("  </item>\n")
	}
	b.WriteString("</items>\n")
	return b.String()
}

// ThingXML renders a thing detail document.
func ThingXML(games ...MockGame) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="utf-8"?>`+"\n")
	b.WriteString(`<items termsofuse="https://boardgamegeek.com/xmlapi/termsofuse">` + "\n")
	for _, g := range games {
		fmt.Fprintf(&b, `  <item type="boardgame" id="%s">`+"\n", escape(g.ID))
		if g.Name != "" {
			fmt.Fprintf(&b, `    <name type="primary" sortindex="1" value="%s"/>`+"\n", escape(g.Name))
		}
		if g.Year != "" {
			fmt.Fprintf(&b, `    <yearpublished value="%s"/>`+"\n", escape(g.Year))
		}
		for i, c := range g.Categories {
			fmt.Fprintf(&b, `    <link type="boardgamecategory" id="%d" value="%s"/>`+"\n", 1000+i, escape(c))
		}
		for i, mech := range g.Mechanics {
			fmt.Fprintf(&b, `    <link type="boardgamemechanic" id="%d" value="%s"/>`+"\n", 2000+i, escape(mech))
		}
		b.WriteString("  </item>\n")
	}
	b.WriteString("</items>\n")
	return b.String()
}

// QueuedXML renders the envelope BGG sends while a collection is prepared.
func QueuedXML() string {
	return `<?xml version="1.0" encoding="utf-8" standalone="yes"?>
<message>
	Your request for this collection has been accepted and will be processed.  Please try again later for access.
</message>
`
}

// InvalidUsernameMessage is the service's message for an unknown username.
const InvalidUsernameMessage = "Invalid username specified"

// ErrorsXML renders the <errors> envelope, one <error> per message.
func ErrorsXML(messages ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8" standalone="yes"?>` + "\n<errors>\n")
	for _, msg := range messages {
		fmt.Fprintf(&b, "\t<error>\n\t\t<message>%s</message>\n\t</error>\n", escape(msg))
	}
	b.WriteString("</errors>\n")
	return b.String()
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "<error>internal server error</error>",
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       "<error><message>Rate limit exceeded.</message></error>",
	}
}

// NewMalformedResponse creates a 200 response whose body is not XML.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       "<html><body>maintenance",
	}
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
