package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"schoolcal/internal/capture"
	"schoolcal/internal/config"
	"schoolcal/internal/extras"
	"schoolcal/internal/ics"
	appLog "schoolcal/internal/log"
	"schoolcal/internal/model"
	"schoolcal/internal/schedule"
	"schoolcal/internal/store"
)

// maxImportBytes bounds an uploaded ICS file. School exports are tens of
// kilobytes; anything past this is not a timetable.
const maxImportBytes = 5 << 20

// Server provides the JSON API and the embedded browser UI.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	extras *extras.Client
	debug  bool
	mux    *http.ServeMux
}

// embeddedStatic contains the exported static UI build. The directory
// under internal/web/static mirrors the bundler output (index.html etc).
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, st *store.Store, ex *extras.Client, debug bool) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		extras: ex,
		debug:  debug,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays unauthenticated for probes.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="schoolcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/import", s.handleImport)
	s.mux.HandleFunc("/api/week", s.handleWeek)
	s.mux.HandleFunc("/api/schedule", s.handleSchedule)
	s.mux.HandleFunc("/api/next", s.handleNext)
	s.mux.HandleFunc("/api/subjects", s.handleSubjects)
	s.mux.HandleFunc("/api/marks", s.handleMarks)
	s.mux.HandleFunc("/api/markbook", s.handleMarkbook)
	s.mux.HandleFunc("/api/extras", s.handleExtras)
	s.mux.HandleFunc("/api/export.ics", s.handleExport)
	s.mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/snapshot.png", s.handleSnapshotImage)

	// Static UI fallback for everything else.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventDTO is the JSON view of a calendar event.
type eventDTO struct {
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end,omitempty"`
	Summary     string     `json:"summary"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	IsBreak     bool       `json:"is_break,omitempty"`
}

func toEventDTO(ev model.CalendarEvent) eventDTO {
	dto := eventDTO{
		Start:       ev.Start,
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		IsBreak:     ev.IsBreak,
	}
	if ev.HasEnd() {
		end := ev.End
		dto.End = &end
	}
	return dto
}

func toEventDTOs(events []model.CalendarEvent) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventDTO(ev))
	}
	return out
}

// importResponse summarizes an accepted import.
type importResponse struct {
	Monday        time.Time `json:"monday"`
	Friday        time.Time `json:"friday"`
	EventCount    int       `json:"event_count"`
	WeekCount     int       `json:"week_count"`
	DroppedEvents int       `json:"dropped_events"`
	BadTimes      int       `json:"bad_times"`
	TZIDDetected  int       `json:"tzid_detected"`
}

// handleImport ingests an uploaded ICS file: parse, bucket into weeks,
// select the template week, persist, and register subjects.
//
// POST /api/import with the raw ICS text as the request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "calendar file too large")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty request body")
		return
	}

	week, diag, weekCount, err := ImportCalendar(s.store, string(body))
	if errors.Is(err, schedule.ErrNoSchoolWeek) {
		writeError(w, http.StatusUnprocessableEntity, "no valid schedule found in file")
		return
	}
	if err != nil {
		appLog.Error("import failed", err)
		writeError(w, http.StatusInternalServerError, "failed to store schedule")
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Monday:        week.Monday,
		Friday:        week.Friday,
		EventCount:    len(week.Events),
		WeekCount:     weekCount,
		DroppedEvents: diag.DroppedEvents,
		BadTimes:      diag.BadTimes,
		TZIDDetected:  diag.TZIDDetected,
	})
}

// ImportCalendar runs the full ingestion pipeline and persists the result.
// It is shared by the HTTP handler, the CLI one-shot import and the cron
// refresh so all three agree on the semantics.
func ImportCalendar(st *store.Store, content string) (model.WeekData, ics.Diagnostics, int, error) {
	events, diag := ics.ParseICS(content)

	weeks := schedule.GroupIntoWeeks(events)
	week, err := schedule.SelectBestWeek(weeks)
	if err != nil {
		return model.WeekData{}, diag, len(weeks), err
	}

	if err := st.SaveWeek(week); err != nil {
		return model.WeekData{}, diag, len(weeks), err
	}

	// Register every summary as a markbook subject. Failures here are not
	// fatal to the import; the schedule is already saved.
	seen := make(map[string]bool)
	for _, ev := range week.Events {
		if seen[ev.Summary] {
			continue
		}
		seen[ev.Summary] = true
		if _, err := st.UpsertSubject(ev.Summary); err != nil {
			appLog.Warn("subject registration failed", "summary", ev.Summary, "err", err)
		}
	}

	appLog.Info("schedule imported",
		"monday", week.Monday.Format("2006-01-02"),
		"events", len(week.Events),
		"weeks_seen", len(weeks),
		"dropped", diag.DroppedEvents,
	)
	return week, diag, len(weeks), nil
}

// handleWeek returns the persisted template week.
//
// GET /api/week
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	week, err := s.store.LoadWeek()
	if err != nil {
		appLog.Error("load week failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}
	if week == nil {
		writeError(w, http.StatusNotFound, "no schedule imported yet")
		return
	}

	writeJSON(w, http.StatusOK, week.Snapshot())
}

// scheduleResponse is the display-ready list for one weekday.
type scheduleResponse struct {
	Day    string     `json:"day"`
	Events []eventDTO `json:"events"`
}

// handleSchedule returns one weekday's events with breaks synthesized and
// the end-of-day marker appended.
//
// GET /api/schedule?day=wednesday (default: today in the configured zone)
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	week, err := s.store.LoadWeek()
	if err != nil {
		appLog.Error("load week failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}
	if week == nil {
		writeError(w, http.StatusNotFound, "no schedule imported yet")
		return
	}

	loc := resolveLocationOrLocal(s.cfg.Timezone)
	day := time.Now().In(loc).Weekday()
	if q := r.URL.Query().Get("day"); q != "" {
		parsed, ok := parseWeekday(q)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown weekday")
			return
		}
		day = parsed
	}

	view := schedule.DayView(week.Events, day, s.breakThreshold(), s.cfg.EndOfDayLabel)
	writeJSON(w, http.StatusOK, scheduleResponse{
		Day:    strings.ToLower(day.String()),
		Events: toEventDTOs(view),
	})
}

// nextResponse is the countdown payload, recomputed on every request.
type nextResponse struct {
	Found     bool       `json:"found"`
	Event     *eventDTO  `json:"event,omitempty"`
	Target    *time.Time `json:"target,omitempty"`
	Countdown string     `json:"countdown"`
	Now       time.Time  `json:"now"`
}

// handleNext resolves the current/next event against the repeating weekly
// template, breaks and end-of-day markers included.
//
// GET /api/next
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	week, err := s.store.LoadWeek()
	if err != nil {
		appLog.Error("load week failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}
	if week == nil {
		writeError(w, http.StatusNotFound, "no schedule imported yet")
		return
	}

	loc := resolveLocationOrLocal(s.cfg.Timezone)
	now := time.Now().In(loc)

	template := schedule.Template(*week, s.breakThreshold(), s.cfg.EndOfDayLabel)
	next := schedule.Resolve(now, template)
	if next == nil {
		// A valid outcome: nothing scheduled on the next school day.
		writeJSON(w, http.StatusOK, nextResponse{
			Found:     false,
			Countdown: schedule.FormatCountdown(0),
			Now:       now,
		})
		return
	}

	dto := toEventDTO(next.Event)
	target := next.Target
	writeJSON(w, http.StatusOK, nextResponse{
		Found:     true,
		Event:     &dto,
		Target:    &target,
		Countdown: schedule.FormatCountdown(target.Sub(now)),
		Now:       now,
	})
}

// subjectDTO is the JSON view of a markbook subject.
type subjectDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Colour  string `json:"colour,omitempty"`
	Teacher string `json:"teacher,omitempty"`
}

// handleSubjects is the subjects collection endpoint.
//
// GET    /api/subjects         list
// POST   /api/subjects         create {name, colour?, teacher?}
// PUT    /api/subjects?id=N    update
// DELETE /api/subjects?id=N    delete (cascades marks)
func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		subjects, err := s.store.ListSubjects()
		if err != nil {
			appLog.Error("list subjects failed", err)
			writeError(w, http.StatusInternalServerError, "failed to list subjects")
			return
		}
		out := make([]subjectDTO, 0, len(subjects))
		for _, sub := range subjects {
			out = append(out, subjectDTO{ID: sub.ID, Name: sub.Name, Colour: sub.Colour, Teacher: sub.Teacher})
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var in subjectDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
			writeError(w, http.StatusBadRequest, "subject name is required")
			return
		}
		sub, err := s.store.UpsertSubject(in.Name)
		if err != nil {
			appLog.Error("create subject failed", err)
			writeError(w, http.StatusInternalServerError, "failed to create subject")
			return
		}
		if in.Colour != "" || in.Teacher != "" {
			sub.Colour = in.Colour
			sub.Teacher = in.Teacher
			if err := s.store.UpdateSubject(sub); err != nil {
				appLog.Error("update subject failed", err)
				writeError(w, http.StatusInternalServerError, "failed to update subject")
				return
			}
		}
		writeJSON(w, http.StatusOK, subjectDTO{ID: sub.ID, Name: sub.Name, Colour: sub.Colour, Teacher: sub.Teacher})

	case http.MethodPut:
		id, ok := queryID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		sub, err := s.store.GetSubject(id)
		if err != nil {
			appLog.Error("get subject failed", err)
			writeError(w, http.StatusInternalServerError, "failed to load subject")
			return
		}
		if sub == nil {
			writeError(w, http.StatusNotFound, "subject not found")
			return
		}
		var in subjectDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if in.Name != "" {
			sub.Name = in.Name
		}
		sub.Colour = in.Colour
		sub.Teacher = in.Teacher
		if err := s.store.UpdateSubject(sub); err != nil {
			appLog.Error("update subject failed", err)
			writeError(w, http.StatusInternalServerError, "failed to update subject")
			return
		}
		writeJSON(w, http.StatusOK, subjectDTO{ID: sub.ID, Name: sub.Name, Colour: sub.Colour, Teacher: sub.Teacher})

	case http.MethodDelete:
		id, ok := queryID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if err := s.store.DeleteSubject(id); err != nil {
			appLog.Error("delete subject failed", err)
			writeError(w, http.StatusInternalServerError, "failed to delete subject")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// markDTO is the JSON view of an exam mark.
type markDTO struct {
	ID        int64   `json:"id"`
	SubjectID int64   `json:"subject_id"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"max_score"`
	Weight    float64 `json:"weight"`
	Percent   float64 `json:"percent"`
	TakenOn   string  `json:"taken_on,omitempty"`
}

// handleMarks is the marks collection endpoint.
//
// GET    /api/marks?subject_id=N   list a subject's marks
// POST   /api/marks                create {subject_id, title, score, max_score, weight?, taken_on?}
// DELETE /api/marks?id=N           delete
func (s *Server) handleMarks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		subjectID, err := strconv.ParseInt(r.URL.Query().Get("subject_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "subject_id is required")
			return
		}
		marks, err := s.store.ListMarksBySubject(subjectID)
		if err != nil {
			appLog.Error("list marks failed", err)
			writeError(w, http.StatusInternalServerError, "failed to list marks")
			return
		}
		out := make([]markDTO, 0, len(marks))
		for _, m := range marks {
			out = append(out, toMarkDTO(*m))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var in markDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if in.SubjectID == 0 || in.Title == "" || in.MaxScore <= 0 {
			writeError(w, http.StatusBadRequest, "subject_id, title and a positive max_score are required")
			return
		}
		mark := model.Mark{
			SubjectID: in.SubjectID,
			Title:     in.Title,
			Score:     in.Score,
			MaxScore:  in.MaxScore,
			Weight:    in.Weight,
		}
		if in.TakenOn != "" {
			t, err := time.Parse("2006-01-02", in.TakenOn)
			if err != nil {
				writeError(w, http.StatusBadRequest, "taken_on must be YYYY-MM-DD")
				return
			}
			mark.TakenOn = t
		}
		if err := s.store.CreateMark(&mark); err != nil {
			appLog.Error("create mark failed", err)
			writeError(w, http.StatusInternalServerError, "failed to create mark")
			return
		}
		writeJSON(w, http.StatusOK, toMarkDTO(mark))

	case http.MethodDelete:
		id, ok := queryID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if err := s.store.DeleteMark(id); err != nil {
			appLog.Error("delete mark failed", err)
			writeError(w, http.StatusInternalServerError, "failed to delete mark")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func toMarkDTO(m model.Mark) markDTO {
	dto := markDTO{
		ID:        m.ID,
		SubjectID: m.SubjectID,
		Title:     m.Title,
		Score:     m.Score,
		MaxScore:  m.MaxScore,
		Weight:    m.Weight,
		Percent:   m.Percent(),
	}
	if !m.TakenOn.IsZero() {
		dto.TakenOn = m.TakenOn.Format("2006-01-02")
	}
	return dto
}

// markbookSummaryDTO is one row of the markbook overview.
type markbookSummaryDTO struct {
	Subject     subjectDTO `json:"subject"`
	MarkCount   int        `json:"mark_count"`
	MeanPercent float64    `json:"mean_percent"`
}

// handleMarkbook returns per-subject mark aggregates.
//
// GET /api/markbook
func (s *Server) handleMarkbook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summaries, err := s.store.SubjectSummaries()
	if err != nil {
		appLog.Error("markbook summary failed", err)
		writeError(w, http.StatusInternalServerError, "failed to summarize markbook")
		return
	}

	out := make([]markbookSummaryDTO, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, markbookSummaryDTO{
			Subject: subjectDTO{
				ID:      sum.Subject.ID,
				Name:    sum.Subject.Name,
				Colour:  sum.Subject.Colour,
				Teacher: sum.Subject.Teacher,
			},
			MarkCount:   sum.MarkCount,
			MeanPercent: sum.MeanPercent,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// extrasResponse carries whatever extras could be fetched; each field is
// independent so one dead upstream never blanks the others.
type extrasResponse struct {
	Quote     *extras.Quote   `json:"quote,omitempty"`
	Word      json.RawMessage `json:"word,omitempty"`
	TermDates json.RawMessage `json:"term_dates,omitempty"`
}

// handleExtras returns the daily extras (quote, word, term dates).
//
// GET /api/extras
func (s *Server) handleExtras(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	var resp extrasResponse

	if quote, err := s.extras.QuoteOfTheDay(ctx); err == nil {
		resp.Quote = &quote
	} else {
		appLog.Warn("quote fetch failed", "err", err)
	}
	if word, err := s.extras.WordOfTheDay(ctx); err == nil {
		resp.Word = word
	}
	if terms, err := s.extras.TermDates(ctx); err == nil {
		resp.TermDates = terms
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleExport serves the template week as a downloadable ICS file.
//
// GET /api/export.ics
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	week, err := s.store.LoadWeek()
	if err != nil {
		appLog.Error("load week failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}
	if week == nil {
		writeError(w, http.StatusNotFound, "no schedule imported yet")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="timetable.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics.ExportWeek(*week)))
}

// handleSnapshot captures the timetable page into a PNG for sharing.
//
// POST /api/snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	outputPath := s.snapshotPath()
	err := capture.CaptureTimetablePNG(r.Context(), capture.Options{
		URL:        "http://" + s.cfg.Listen + "/",
		OutputPath: outputPath,
	})
	if err != nil {
		appLog.Error("snapshot capture failed", err)
		writeError(w, http.StatusInternalServerError, "failed to capture snapshot")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": "/snapshot.png"})
}

// handleSnapshotImage serves the last captured PNG from disk.
func (s *Server) handleSnapshotImage(w http.ResponseWriter, r *http.Request) {
	// http.ServeFile returns the right status for missing files.
	http.ServeFile(w, r, s.snapshotPath())
}

func (s *Server) snapshotPath() string {
	return filepath.Join(s.cfg.DataDir, "snapshot.png")
}

// staticFileServer serves the embedded UI from internal/web/static.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /api/* must never fall through to the static UI; an unknown API
		// path gets a 404, not HTML.
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func (s *Server) breakThreshold() time.Duration {
	return time.Duration(s.cfg.BreakThresholdSec) * time.Second
}

// StartServer runs the HTTP server until ctx is canceled, then shuts down
// gracefully.
func StartServer(ctx context.Context, cfg *config.Config, st *store.Store, ex *extras.Client, debug bool) error {
	s := NewServer(cfg, st, ex, debug)
	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "debug", debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func parseWeekday(s string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), true
	}
	return 0, false
}

func queryID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	return id, err == nil
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
