// Package httpapi implements spec §6.6's HTTP/JSON interface: a
// data.json snapshot resource, a bounding-box filter, a live-push
// websocket feed, and static asset serving with a configurable default
// page. No teacher or pack repo serves HTTP directly (the teacher only
// writes BaseStation/raw files), so the server shape is this decoder's
// own, built around libraries the wider pack already depends on:
// golang/geo/s2 for the bbox filter (doismellburning-samoyed's
// ll2utm command already imports it for lat/lon geometry),
// gorilla/websocket for the live feed (an explicit montge-stratux
// dependency), and patrickmn/go-cache for response caching (the same
// library Regentag-go1090's mode_s.Decoder uses for its ICAO cache,
// repurposed here for its original library intent - a short-TTL
// key/value cache - rather than re-imitating this decoder's own
// internal/icaocache).
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/geo/s2"
	"github.com/gorilla/websocket"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"mode1090/internal/framer"
	"mode1090/internal/roster"
)

// AircraftJSON is one data.json array entry, per spec §6.6's field list.
type AircraftJSON struct {
	Hex      string  `json:"hex"`
	Flight   string  `json:"flight"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Altitude int     `json:"altitude"`
	Track    int     `json:"track"`
	Speed    int     `json:"speed"`
}

// dataCacheTTL bounds how often a repeated data.json request recomputes
// the roster snapshot, via go-cache.
const dataCacheTTL = 1 * time.Second

// Server serves data.json, static assets under WebRoot, and a /ws
// live-update feed, and doubles as a pipeline.Sink that pushes newly
// positioned aircraft to connected websocket clients.
type Server struct {
	roster      *roster.Roster
	webRoot     string
	defaultPage string
	logger      *logrus.Logger

	cache    *gocache.Cache
	upgrader websocket.Upgrader

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}

	// Live counters for spec §6.7's statistics dump; atomic since they're
	// read from internal/stats outside the clientsMu critical sections.
	clientsAccepted uint64
	clientsRemoved  uint64
	bytesSent       uint64
}

// NewServer builds a Server. webRoot is the static-asset directory;
// defaultPage is the path "GET /" redirects to, per spec §6.6.
func NewServer(r *roster.Roster, webRoot, defaultPage string, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{
		roster:      r,
		webRoot:     webRoot,
		defaultPage: defaultPage,
		logger:      logger,
		cache:       gocache.New(dataCacheTTL, 2*dataCacheTTL),
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:     make(map[*websocket.Conn]struct{}),
	}
}

// Handler builds the HTTP mux: "/" redirects to defaultPage, "/data.json"
// serves the roster snapshot, "/ws" upgrades to the live feed, everything
// else falls through to the static file server over webRoot.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/data.json", s.handleData)
	mux.HandleFunc("/ws", s.handleWS)
	fileServer := http.FileServer(http.Dir(s.webRoot))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, s.defaultPage, http.StatusFound)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
	return mux
}

// handleData writes the filtered, cached roster snapshot as JSON, per
// spec §6.6: only entries with both lat and lon non-zero, an optional
// bbox query filter (lamin, lamax, lomin, lomax), no trailing comma.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RawQuery
	if cached, ok := s.cache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(cached.([]byte))
		return
	}

	rect, hasBBox := parseBBox(r)
	list := toAircraftJSON(s.roster.Snapshot(), rect, hasBBox)

	body, err := json.Marshal(list)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.cache.Set(key, body, gocache.DefaultExpiration)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// parseBBox reads lamin/lamax/lomin/lomax query parameters into an
// s2.Rect, if all four are present and well-formed.
func parseBBox(r *http.Request) (s2.Rect, bool) {
	q := r.URL.Query()
	lamin, err1 := strconv.ParseFloat(q.Get("lamin"), 64)
	lamax, err2 := strconv.ParseFloat(q.Get("lamax"), 64)
	lomin, err3 := strconv.ParseFloat(q.Get("lomin"), 64)
	lomax, err4 := strconv.ParseFloat(q.Get("lomax"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return s2.Rect{}, false
	}
	rect := s2.RectFromLatLng(s2.LatLngFromDegrees(lamin, lomin))
	rect = rect.AddPoint(s2.LatLngFromDegrees(lamax, lomax))
	return rect, true
}

func toAircraftJSON(records []roster.Record, rect s2.Rect, hasBBox bool) []AircraftJSON {
	out := make([]AircraftJSON, 0, len(records))
	for _, rec := range records {
		if !rec.Position.Valid || rec.Position.Lat == 0 || rec.Position.Lon == 0 {
			continue
		}
		if hasBBox && !rect.ContainsLatLng(s2.LatLngFromDegrees(rec.Position.Lat, rec.Position.Lon)) {
			continue
		}
		out = append(out, AircraftJSON{
			Hex:      icaoHex(rec.ICAO24),
			Flight:   rec.Callsign,
			Lat:      rec.Position.Lat,
			Lon:      rec.Position.Lon,
			Altitude: rec.Altitude,
			Track:    int(rec.Heading),
			Speed:    int(rec.Speed),
		})
	}
	return out
}

func icaoHex(icao uint32) string {
	const digits = "0123456789ABCDEF"
	b := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		b[i] = digits[icao&0xF]
		icao >>= 4
	}
	return string(b)
}

// handleWS upgrades the connection and registers it for live pushes from
// Accept; it sends the current snapshot immediately on connect.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Debug("websocket upgrade failed")
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	s.clientsMu.Unlock()
	atomic.AddUint64(&s.clientsAccepted, 1)

	snapshot := toAircraftJSON(s.roster.Snapshot(), s2.Rect{}, false)
	_ = conn.WriteJSON(snapshot)

	go s.drainClient(conn)
}

// drainClient discards inbound client traffic until the connection
// closes, at which point it's deregistered - gorilla/websocket requires
// reading the connection to notice client-initiated closes.
func (s *Server) drainClient(conn *websocket.Conn) {
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		atomic.AddUint64(&s.clientsRemoved, 1)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Accept implements pipeline.Sink: every message that updated a
// now-positioned aircraft is pushed to all connected websocket clients.
func (s *Server) Accept(_ *framer.Message, rec roster.Record) {
	if !rec.Position.Valid {
		return
	}
	entry := AircraftJSON{
		Hex:      icaoHex(rec.ICAO24),
		Flight:   rec.Callsign,
		Lat:      rec.Position.Lat,
		Lon:      rec.Position.Lon,
		Altitude: rec.Altitude,
		Track:    int(rec.Heading),
		Speed:    int(rec.Speed),
	}
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			s.logger.WithError(err).Debug("websocket push failed")
			continue
		}
		atomic.AddUint64(&s.bytesSent, uint64(len(body)))
	}
}

// ClientStats reports live websocket counters, for spec §6.7's statistics
// dump: clients accepted/removed and cumulative bytes pushed.
func (s *Server) ClientStats() (accepted, removed, bytesSent uint64) {
	return atomic.LoadUint64(&s.clientsAccepted), atomic.LoadUint64(&s.clientsRemoved), atomic.LoadUint64(&s.bytesSent)
}
