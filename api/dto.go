/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Field names
  follow the historical payloads (sales, validationStatus, statusLog, ...)
  so existing exports and clients keep working against this service.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - kpi/types.go: Domain model these shapes project
*/
package api

import (
	"time"

	"github.com/warp/kpi-engine/kpi"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserDTO represents a user in API responses. The password never leaves the
// store layer.
type UserDTO struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// =============================================================================
// RECORDS
// =============================================================================

// RecordDTO represents one activity record in API responses.
type RecordDTO struct {
	ID               string            `json:"id"`
	Collection       string            `json:"collection"`
	Sales            string            `json:"sales"`
	Timestamp        time.Time         `json:"timestamp"`
	Datestamp        string            `json:"datestamp,omitempty"`
	ValidationStatus string            `json:"validationStatus"`
	ValidationNotes  string            `json:"validationNotes,omitempty"`
	RevisionLog      string            `json:"revisionLog,omitempty"`
	Status           string            `json:"status,omitempty"`
	StatusLog        string            `json:"statusLog,omitempty"`
	CustomerName     string            `json:"customerName,omitempty"`
	LeadSource       string            `json:"leadSource,omitempty"`
	Product          string            `json:"product,omitempty"`
	Contact          string            `json:"contact,omitempty"`
	ProofOfLead      string            `json:"proofOfLead,omitempty"`
	ProofOfDeal      string            `json:"proofOfDeal,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// SubmitRecordRequest carries the client-editable fields of a submission.
// Server-stamped fields (sales, timestamp, validation state) are ignored on
// input; the submission workflow sets them.
type SubmitRecordRequest struct {
	CustomerName string            `json:"customerName"`
	LeadSource   string            `json:"leadSource"`
	Product      string            `json:"product"`
	Contact      string            `json:"contact"`
	ProofOfLead  string            `json:"proofOfLead"`
	ProofOfDeal  string            `json:"proofOfDeal"`
	Notes        string            `json:"notes"`
	Extra        map[string]string `json:"extra"`
}

// ValidateRequest is a management review decision for one record.
type ValidateRequest struct {
	Action string `json:"action"` // "approve" or "reject"
	Notes  string `json:"notes"`
}

// ConvertRequest moves a lead-chain record to its next status.
type ConvertRequest struct {
	Status      string `json:"status"` // "Prospect", "Deal" or "Lost"
	Notes       string `json:"notes"`
	ProofOfDeal string `json:"proofOfDeal,omitempty"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// EnablementDTO mirrors the stored shape: target IDs as string keys mapping
// to their on/off state. Missing IDs count as enabled.
type EnablementDTO struct {
	Data map[string]bool `json:"data"`
}

type CutoffDTO struct {
	IsEnabled bool   `json:"isEnabled"`
	Time      string `json:"time"`
}

type CutoffResponse struct {
	Data CutoffDTO `json:"data"`
}

type TimeOffEntryDTO struct {
	ID          string `json:"id"`
	Date        string `json:"date"` // YYYY-MM-DD
	Sales       string `json:"sales"`
	Description string `json:"description,omitempty"`
}

type AddTimeOffRequest struct {
	Date        string `json:"date"`
	Sales       string `json:"sales"`
	Description string `json:"description"`
}

// =============================================================================
// DASHBOARD / ROLLUPS
// =============================================================================

type ProgressBarDTO struct {
	Achieved int `json:"achieved"`
	Quota    int `json:"quota"`
	Percent  int `json:"percent"`
}

type BreakdownDTO struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

// DashboardResponse is the per-rep view for the selected period.
type DashboardResponse struct {
	Sales            string         `json:"sales"`
	PeriodStart      string         `json:"periodStart"`
	PeriodEnd        string         `json:"periodEnd"`
	DailyProgress    ProgressBarDTO `json:"dailyProgress"`
	WeeklyProgress   ProgressBarDTO `json:"weeklyProgress"`
	MonthlyProgress  ProgressBarDTO `json:"monthlyProgress"`
	FinalPenalty     kpi.Money      `json:"finalPenalty"`
	PotentialPenalty kpi.Money      `json:"potentialPenalty"`
	Validation       BreakdownDTO   `json:"validation"`
	RejectedItems    []RecordDTO    `json:"rejectedItems"`
}

type LeaderboardRowDTO struct {
	Name    string    `json:"name"`
	Total   int       `json:"total"`
	Penalty kpi.Money `json:"penalty"`
}

// PendingGroupDTO is one rep's pending queue, grouped by collection name.
type PendingGroupDTO struct {
	Sales string                 `json:"sales"`
	Total int                    `json:"total"`
	Items map[string][]RecordDTO `json:"items"`
}

// SummaryResponse is the management rollup across the whole team.
type SummaryResponse struct {
	PeriodStart  string               `json:"periodStart"`
	PeriodEnd    string               `json:"periodEnd"`
	TotalPenalty kpi.Money            `json:"totalPenalty"`
	Penalties    map[string]kpi.Money `json:"penalties"`
	Leaderboard  []LeaderboardRowDTO  `json:"leaderboard"`
	Validation   BreakdownDTO         `json:"validation"`
	Pending      []PendingGroupDTO    `json:"pendingValidation"`
}

type MatrixCellDTO struct {
	Date     string `json:"date"`
	DayOff   bool   `json:"dayOff,omitempty"`
	Filled   bool   `json:"filled"`
	Pending  int    `json:"pending"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
}

type MatrixRowDTO struct {
	TargetID   int             `json:"targetId"`
	TargetName string          `json:"targetName"`
	Cadence    string          `json:"cadence"`
	Quota      int             `json:"quota"`
	Cells      []MatrixCellDTO `json:"cells"`
}

// MatrixResponse is one 7-day page of the performance matrix.
type MatrixResponse struct {
	Sales string         `json:"sales"`
	Week  int            `json:"week"`
	Weeks int            `json:"weeks"`
	Dates []string       `json:"dates"`
	Rows  []MatrixRowDTO `json:"rows"`
}

// =============================================================================
// UPLOAD / EXPORT
// =============================================================================

// UploadRequest proxies a file to the external storage endpoint. FileData is
// base64, with or without the data-URL prefix.
type UploadRequest struct {
	FileName       string `json:"fileName"`
	MimeType       string `json:"mimeType"`
	FileData       string `json:"fileData"`
	CollectionName string `json:"collectionName"`
}

type UploadResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

// ExportResponse is the full-period data dump, keyed by collection name.
type ExportResponse struct {
	PeriodStart string                 `json:"periodStart"`
	PeriodEnd   string                 `json:"periodEnd"`
	ExportedAt  string                 `json:"exportedAt"`
	Collections map[string][]RecordDTO `json:"collections"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StepFailureResponse reports a multi-step conversion that stopped partway.
// Completed names the writes that already happened so operators can reconcile.
type StepFailureResponse struct {
	Error     string   `json:"error"`
	Step      string   `json:"step"`
	Completed []string `json:"completed"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRecordDTO(r kpi.Record) RecordDTO {
	return RecordDTO{
		ID:               r.ID,
		Collection:       r.Collection.String(),
		Sales:            r.Sales,
		Timestamp:        r.Timestamp,
		Datestamp:        r.Datestamp,
		ValidationStatus: r.ValidationStatus.String(),
		ValidationNotes:  r.ValidationNotes,
		RevisionLog:      r.RevisionLog,
		Status:           string(r.Status),
		StatusLog:        r.StatusLog,
		CustomerName:     r.CustomerName,
		LeadSource:       r.LeadSource,
		Product:          r.Product,
		Contact:          r.Contact,
		ProofOfLead:      r.ProofOfLead,
		ProofOfDeal:      r.ProofOfDeal,
		Notes:            r.Notes,
		Extra:            r.Extra,
	}
}

func toRecordDTOs(recs []kpi.Record) []RecordDTO {
	dtos := make([]RecordDTO, len(recs))
	for i, r := range recs {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}

func (req SubmitRecordRequest) toRecord(c kpi.Collection) kpi.Record {
	return kpi.Record{
		Collection:   c,
		CustomerName: req.CustomerName,
		LeadSource:   req.LeadSource,
		Product:      req.Product,
		Contact:      req.Contact,
		ProofOfLead:  req.ProofOfLead,
		ProofOfDeal:  req.ProofOfDeal,
		Notes:        req.Notes,
		Extra:        req.Extra,
	}
}

func toProgressBarDTO(b kpi.ProgressBar) ProgressBarDTO {
	return ProgressBarDTO{Achieved: b.Achieved, Quota: b.Quota, Percent: b.Percent}
}

func toBreakdownDTO(b kpi.Breakdown) BreakdownDTO {
	return BreakdownDTO{Pending: b.Pending, Approved: b.Approved, Rejected: b.Rejected, Total: b.Total}
}

func toTimeOffDTO(e kpi.TimeOffEntry) TimeOffEntryDTO {
	return TimeOffEntryDTO{ID: e.ID, Date: e.Date.String(), Sales: e.Sales, Description: e.Note}
}

func toMatrixResponse(sales string, weeks int, m kpi.Matrix) MatrixResponse {
	resp := MatrixResponse{Sales: sales, Week: m.Week, Weeks: weeks}
	for _, d := range m.Dates {
		resp.Dates = append(resp.Dates, d.String())
	}
	for _, row := range m.Rows {
		dto := MatrixRowDTO{
			TargetID:   row.Target.ID,
			TargetName: row.Target.Name,
			Cadence:    row.Target.Cadence.String(),
			Quota:      row.Target.Quota,
		}
		for _, cell := range row.Cells {
			dto.Cells = append(dto.Cells, MatrixCellDTO{
				Date:     cell.Date.String(),
				DayOff:   cell.DayOff,
				Filled:   cell.Filled,
				Pending:  cell.Pending,
				Approved: cell.Approved,
				Rejected: cell.Rejected,
			})
		}
		resp.Rows = append(resp.Rows, dto)
	}
	return resp
}
