/*
handlers.go - HTTP API handlers for the KPI tracking service

PURPOSE:
  Exposes the penalty engine, the validation workflow, and the conversion
  chain via REST API. Handles HTTP request/response, JSON serialization,
  and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/login                      Exchange credentials for a token
    POST   /api/auth/logout                     Revoke the caller's token

  Records:
    GET    /api/data/{collection}               List records (period + filters)
    POST   /api/data/{collection}               Submit a new record
    GET    /api/data/{collection}/{id}          Get one record
    PUT    /api/data/{collection}/{id}          Edit and resubmit a record
    DELETE /api/data/{collection}/{id}          Delete a record (management)
    POST   /api/data/{collection}/{id}/validate Approve or reject (management)
    POST   /api/data/{collection}/{id}/convert  Move along the Lead chain

  Rollups:
    GET    /api/dashboard                       Per-rep progress and penalties
    GET    /api/dashboard/matrix                Performance matrix, one week page
    GET    /api/management/summary              Team rollup (management)
    GET    /api/export                          Full-period dump (management)

  Settings (management):
    GET/PUT /api/settings/kpi                   Target enablement
    GET/PUT /api/settings/cutoff                Daily submission cutoff
    GET/POST /api/settings/timeoff              Day-off calendar
    DELETE  /api/settings/timeoff/{id}

  Misc:
    GET    /api/users/sales                     Sales rep roster
    POST   /api/upload                          Proxy a file to external storage

ARCHITECTURE:
  Handler struct holds all dependencies: the data and settings stores, the
  penalty engine, the workflow services, the session manager, and the
  upload client. Handlers fetch a period snapshot once per request and run
  every rollup against it.

ERROR HANDLING:
  Domain errors map to HTTP status via writeDomainError:
  - 400: invalid input (blank reason, missing proof, cutoff violation)
  - 401: missing or expired session
  - 403: role not allowed
  - 404: unknown record or collection
  - 502: upload endpoint or store failure
  Partial conversion failures answer 502 with the completed-steps list.

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Sessions and role middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/upload"
	"github.com/warp/kpi-engine/workflow"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Data     kpi.DataStore
	Settings kpi.SettingsStore
	Users    kpi.UserStore
	Registry *kpi.Registry
	Engine   *kpi.Engine
	Sessions *SessionManager
	Uploader upload.Uploader

	Submitter *workflow.Submitter
	Reviewer  *workflow.Reviewer
	Converter *workflow.Converter

	now func() time.Time
}

// NewHandler wires the handler with its workflow services.
func NewHandler(data kpi.DataStore, settings kpi.SettingsStore, users kpi.UserStore, uploader upload.Uploader, sessionTTL time.Duration) *Handler {
	registry := kpi.DefaultRegistry()
	return &Handler{
		Data:      data,
		Settings:  settings,
		Users:     users,
		Registry:  registry,
		Engine:    kpi.NewEngine(registry),
		Sessions:  NewSessionManager(sessionTTL),
		Uploader:  uploader,
		Submitter: workflow.NewSubmitter(data, settings, registry),
		Reviewer:  workflow.NewReviewer(data),
		Converter: workflow.NewConverter(data),
		now:       time.Now,
	}
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// ListRecords returns a collection's records for the selected period.
// Sales users only ever see their own rows; management can filter by rep
// with ?sales= or see the whole team.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collectionParam(w, r)
	if !ok {
		return
	}

	p := h.periodParam(r)
	q := kpi.Query{From: p.Start.DayStart(), To: p.End.DayEnd()}

	user := userFrom(r.Context())
	if user.IsManagement() {
		q.Sales = r.URL.Query().Get("sales")
	} else {
		q.Sales = user.Name
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := kpi.ParseValidationStatus(raw)
		q.Status = &status
	}

	recs, err := h.Data.List(r.Context(), c, q)
	if err != nil {
		writeDomainError(w, "Failed to list records", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(recs))
}

// SubmitRecord creates a record for the authenticated rep.
func (h *Handler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collectionParam(w, r)
	if !ok {
		return
	}

	var req SubmitRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user := userFrom(r.Context())
	created, err := h.Submitter.Submit(r.Context(), req.toRecord(c), user.Name)
	if err != nil {
		writeDomainError(w, "Failed to submit record", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(created))
}

// GetRecord returns one record by ID.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collectionParam(w, r)
	if !ok {
		return
	}

	rec, err := h.Data.Get(r.Context(), c, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Record not found", err)
		return
	}
	if !h.canSee(r, rec) {
		writeError(w, http.StatusForbidden, "Not your record", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// UpdateRecord applies a rep's edit. The record returns to Pending and the
// edit is stamped into the revision log.
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collectionParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var req SubmitRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	existing, err := h.Data.Get(r.Context(), c, id)
	if err != nil {
		writeDomainError(w, "Record not found", err)
		return
	}
	if !h.canSee(r, existing) {
		writeError(w, http.StatusForbidden, "Not your record", nil)
		return
	}

	user := userFrom(r.Context())
	err = h.Reviewer.Resubmit(r.Context(), c, id, user.Name, func(rec *kpi.Record) {
		rec.CustomerName = req.CustomerName
		rec.LeadSource = req.LeadSource
		rec.Product = req.Product
		rec.Contact = req.Contact
		rec.ProofOfLead = req.ProofOfLead
		rec.ProofOfDeal = req.ProofOfDeal
		rec.Notes = req.Notes
		rec.Extra = req.Extra
	})
	if err != nil {
		writeDomainError(w, "Failed to update record", err)
		return
	}

	updated, err := h.Data.Get(r.Context(), c, id)
	if err != nil {
		writeDomainError(w, "Failed to reload record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(updated))
}

// DeleteRecord removes a record. Management only.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collectionParam(w, r)
	if !ok {
		return
	}
	if err := h.Data.Delete(r.Context(), c, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete record", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ValidateRecord applies a management review decision.
func (h *Handler) ValidateRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collectionParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var req ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var err error
	switch strings.ToLower(req.Action) {
	case "approve":
		err = h.Reviewer.Approve(r.Context(), c, id, req.Notes)
	case "reject":
		err = h.Reviewer.Reject(r.Context(), c, id, req.Notes)
	default:
		writeError(w, http.StatusBadRequest, "Action must be approve or reject", nil)
		return
	}
	if err != nil {
		writeDomainError(w, "Failed to validate record", err)
		return
	}

	rec, err := h.Data.Get(r.Context(), c, id)
	if err != nil {
		writeDomainError(w, "Failed to reload record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// ConvertRecord moves a Lead or Prospect along the conversion chain.
func (h *Handler) ConvertRecord(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collectionParam(w, r)
	if !ok {
		return
	}
	if c != kpi.CollectionLeads && c != kpi.CollectionProspects {
		writeError(w, http.StatusBadRequest, "Only Leads and Prospects can be converted", nil)
		return
	}
	id := chi.URLParam(r, "id")

	var req ConvertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var err error
	switch kpi.LeadStatus(req.Status) {
	case kpi.LeadStatusProspect:
		if c != kpi.CollectionLeads {
			writeError(w, http.StatusBadRequest, "Only a Lead can become a Prospect", nil)
			return
		}
		err = h.Converter.ToProspect(r.Context(), id, req.Notes)
	case kpi.LeadStatusDeal:
		err = h.Converter.ToDeal(r.Context(), c, id, req.Notes, req.ProofOfDeal)
	case kpi.LeadStatusLost:
		err = h.Converter.ToLost(r.Context(), c, id, req.Notes)
	default:
		writeError(w, http.StatusBadRequest, "Status must be Prospect, Deal or Lost", nil)
		return
	}
	if err != nil {
		writeDomainError(w, "Conversion failed", err)
		return
	}

	rec, err := h.Data.Get(r.Context(), c, id)
	if err != nil {
		writeDomainError(w, "Failed to reload record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

// Dashboard returns the per-rep view: progress bars, final and potential
// penalties, the validation breakdown, and the rejected queue.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p := h.periodParam(r)
	rep := h.repParam(r)

	snap, err := kpi.FetchSnapshot(r.Context(), h.Data, h.Settings, p)
	if err != nil {
		writeDomainError(w, "Failed to load period data", err)
		return
	}

	today := kpi.DateOf(h.now())
	progress := h.Engine.Progress(snap, rep, today)

	writeJSON(w, http.StatusOK, DashboardResponse{
		Sales:            rep,
		PeriodStart:      p.Start.String(),
		PeriodEnd:        p.End.String(),
		DailyProgress:    toProgressBarDTO(progress.Daily),
		WeeklyProgress:   toProgressBarDTO(progress.Weekly),
		MonthlyProgress:  toProgressBarDTO(progress.Monthly),
		FinalPenalty:     h.Engine.RepPenalty(snap, rep, today, kpi.ApprovedOnly),
		PotentialPenalty: h.Engine.RepPenalty(snap, rep, today, kpi.ApprovedOrPending),
		Validation:       toBreakdownDTO(h.Engine.ValidationBreakdown(snap, rep)),
		RejectedItems:    toRecordDTOs(h.Engine.RejectedQueue(snap, rep)),
	})
}

// Matrix returns one 7-day page of the per-rep performance matrix.
func (h *Handler) Matrix(w http.ResponseWriter, r *http.Request) {
	p := h.periodParam(r)
	rep := h.repParam(r)

	snap, err := kpi.FetchSnapshot(r.Context(), h.Data, h.Settings, p)
	if err != nil {
		writeDomainError(w, "Failed to load period data", err)
		return
	}

	weeks := h.Engine.WeekPages(p)
	week := 0
	if raw := r.URL.Query().Get("week"); raw != "" {
		week, err = strconv.Atoi(raw)
		if err != nil || week < 0 || week >= weeks {
			writeError(w, http.StatusBadRequest, "Invalid week index", nil)
			return
		}
	}

	writeJSON(w, http.StatusOK, toMatrixResponse(rep, weeks, h.Engine.PerformanceMatrix(snap, rep, week)))
}

// Summary returns the management rollup: team penalties, the leaderboard,
// and the pending-validation queues grouped by rep.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	p := h.periodParam(r)

	snap, err := kpi.FetchSnapshot(r.Context(), h.Data, h.Settings, p)
	if err != nil {
		writeDomainError(w, "Failed to load period data", err)
		return
	}

	reps, err := h.Users.SalesUsers(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list sales users", err)
		return
	}
	names := make([]string, len(reps))
	for i, u := range reps {
		names[i] = u.Name
	}

	today := kpi.DateOf(h.now())
	penalties, total := h.Engine.TeamPenalties(snap, names, today)

	var rows []LeaderboardRowDTO
	for _, row := range h.Engine.Leaderboard(snap, names, today) {
		rows = append(rows, LeaderboardRowDTO{Name: row.Name, Total: row.Total, Penalty: row.Penalty})
	}

	pendingByRep := h.Engine.PendingByRep(snap)
	var pending []PendingGroupDTO
	for _, name := range names {
		byCollection, ok := pendingByRep[name]
		if !ok {
			continue
		}
		group := PendingGroupDTO{Sales: name, Items: make(map[string][]RecordDTO)}
		for c, recs := range byCollection {
			group.Items[c.String()] = toRecordDTOs(recs)
			group.Total += len(recs)
		}
		pending = append(pending, group)
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		PeriodStart:  p.Start.String(),
		PeriodEnd:    p.End.String(),
		TotalPenalty: total,
		Penalties:    penalties,
		Leaderboard:  rows,
		Validation:   toBreakdownDTO(h.Engine.ValidationBreakdown(snap, "")),
		Pending:      pending,
	})
}

// Export dumps every collection's records for the period.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	p := h.periodParam(r)
	q := kpi.Query{From: p.Start.DayStart(), To: p.End.DayEnd()}

	out := ExportResponse{
		PeriodStart: p.Start.String(),
		PeriodEnd:   p.End.String(),
		ExportedAt:  h.now().UTC().Format(time.RFC3339),
		Collections: make(map[string][]RecordDTO),
	}
	for _, c := range kpi.Collections() {
		recs, err := h.Data.List(r.Context(), c, q)
		if err != nil {
			writeDomainError(w, "Failed to export "+c.String(), err)
			return
		}
		out.Collections[c.String()] = toRecordDTOs(recs)
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetEnablement returns the target on/off map.
func (h *Handler) GetEnablement(w http.ResponseWriter, r *http.Request) {
	en, err := h.Settings.Enablement(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to load settings", err)
		return
	}

	data := make(map[string]bool)
	for _, t := range h.Registry.All() {
		data[strconv.Itoa(t.ID)] = en.IsEnabled(t.ID)
	}
	writeJSON(w, http.StatusOK, EnablementDTO{Data: data})
}

// SaveEnablement replaces the target on/off map. Unknown IDs are rejected.
func (h *Handler) SaveEnablement(w http.ResponseWriter, r *http.Request) {
	var req EnablementDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	en := make(kpi.Enablement, len(req.Data))
	for raw, enabled := range req.Data {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Target IDs must be numeric", err)
			return
		}
		if _, ok := h.Registry.ByID(id); !ok {
			writeError(w, http.StatusBadRequest, "Unknown target ID "+raw, nil)
			return
		}
		en[id] = enabled
	}

	if err := h.Settings.SaveEnablement(r.Context(), en); err != nil {
		writeDomainError(w, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetCutoff returns the daily submission cutoff.
func (h *Handler) GetCutoff(w http.ResponseWriter, r *http.Request) {
	cut, err := h.Settings.Cutoff(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, CutoffResponse{Data: CutoffDTO{IsEnabled: cut.Enabled, Time: cut.Time}})
}

// SaveCutoff stores the daily submission cutoff. The time must be HH:MM.
func (h *Handler) SaveCutoff(w http.ResponseWriter, r *http.Request) {
	var req CutoffDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		writeError(w, http.StatusBadRequest, "Cutoff time must be HH:MM", err)
		return
	}

	if err := h.Settings.SaveCutoff(r.Context(), kpi.CutoffSetting{Enabled: req.IsEnabled, Time: req.Time}); err != nil {
		writeDomainError(w, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListTimeOff returns the day-off calendar.
func (h *Handler) ListTimeOff(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Settings.TimeOff(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to load day-off entries", err)
		return
	}
	dtos := make([]TimeOffEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toTimeOffDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddTimeOff registers a day off, for one rep or for the whole team.
func (h *Handler) AddTimeOff(w http.ResponseWriter, r *http.Request) {
	var req AddTimeOffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD", err)
		return
	}
	sales := req.Sales
	if sales == "" {
		sales = kpi.GlobalSales
	}

	entry, err := h.Settings.AddTimeOff(r.Context(), kpi.TimeOffEntry{
		Date:  kpi.DateOf(day),
		Sales: sales,
		Note:  req.Description,
	})
	if err != nil {
		writeDomainError(w, "Failed to add day-off entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimeOffDTO(entry))
}

// DeleteTimeOff removes a day-off entry by ID.
func (h *Handler) DeleteTimeOff(w http.ResponseWriter, r *http.Request) {
	if err := h.Settings.DeleteTimeOff(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete day-off entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// USER / UPLOAD HANDLERS
// =============================================================================

// ListSalesUsers returns the sales rep roster.
func (h *Handler) ListSalesUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.SalesUsers(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list sales users", err)
		return
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = UserDTO{Name: u.Name, Email: u.Email, Role: u.Role}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UploadFile proxies a file to the external storage endpoint and returns
// its public URL.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := kpi.ParseCollection(req.CollectionName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown collection "+req.CollectionName, nil)
		return
	}

	data, err := base64.StdEncoding.DecodeString(stripDataURL(req.FileData))
	if err != nil {
		writeError(w, http.StatusBadRequest, "File data must be base64", err)
		return
	}

	user := userFrom(r.Context())
	url, err := h.Uploader.Upload(r.Context(), upload.File{
		Name:       req.FileName,
		MimeType:   req.MimeType,
		Data:       data,
		Collection: c,
		Sales:      user.Name,
	})
	if err != nil {
		writeDomainError(w, "Upload failed", err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Status: "success", URL: url})
}

// =============================================================================
// HELPERS
// =============================================================================

// collectionParam resolves the {collection} URL segment. Unknown names
// answer 404 directly.
func (h *Handler) collectionParam(w http.ResponseWriter, r *http.Request) (kpi.Collection, bool) {
	name := chi.URLParam(r, "collection")
	c, err := kpi.ParseCollection(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown collection "+name, nil)
		return 0, false
	}
	return c, true
}

// periodParam selects the reporting period: ?year= and ?month= name the
// period's starting month, otherwise the period containing today.
func (h *Handler) periodParam(r *http.Request) kpi.Period {
	q := r.URL.Query()
	year, errY := strconv.Atoi(q.Get("year"))
	month, errM := strconv.Atoi(q.Get("month"))
	if errY == nil && errM == nil && month >= 1 && month <= 12 {
		return kpi.PeriodFor(year, time.Month(month), h.now().Location())
	}
	return kpi.CurrentPeriod(h.now())
}

// repParam resolves whose data a dashboard request is about. Sales users
// are pinned to themselves; management may name any rep with ?sales=.
func (h *Handler) repParam(r *http.Request) string {
	user := userFrom(r.Context())
	if user.IsManagement() {
		if sales := r.URL.Query().Get("sales"); sales != "" {
			return sales
		}
	}
	return user.Name
}

// canSee reports whether the caller may read or edit a record.
func (h *Handler) canSee(r *http.Request, rec kpi.Record) bool {
	user := userFrom(r.Context())
	return user.IsManagement() || rec.Sales == user.Name
}

func stripDataURL(raw string) string {
	if strings.HasPrefix(raw, "data:") {
		if i := strings.Index(raw, ";base64,"); i >= 0 {
			return raw[i+len(";base64,"):]
		}
	}
	return raw
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP status codes. Partial
// conversion failures carry their completed-steps list so the client can
// show what already happened.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var step *kpi.StepError
	if errors.As(err, &step) {
		writeJSON(w, http.StatusBadGateway, StepFailureResponse{
			Error:     message + ": " + step.Error(),
			Step:      step.Step,
			Completed: step.Completed,
		})
		return
	}

	switch {
	case errors.Is(err, kpi.ErrValidationInput):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, kpi.ErrAuthExpired):
		writeError(w, http.StatusUnauthorized, message, err)
	case errors.Is(err, kpi.ErrForbidden):
		writeError(w, http.StatusForbidden, message, err)
	case errors.Is(err, kpi.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, kpi.ErrUploadFailed), errors.Is(err, kpi.ErrUpstream):
		writeError(w, http.StatusBadGateway, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
