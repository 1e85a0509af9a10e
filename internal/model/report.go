package model

import (
	"encoding/json"
	"time"
)

// ReportType distinguishes single-lot reports from multi-lot assemblages.
type ReportType string

const (
	ReportTypeSingle     ReportType = "single"
	ReportTypeAssemblage ReportType = "assemblage"
)

// ReportStatus represents the lifecycle state of a feasibility report.
type ReportStatus string

const (
	ReportStatusPending ReportStatus = "pending"
	ReportStatusReady   ReportStatus = "ready"
	ReportStatusFailed  ReportStatus = "failed"
)

// Result source keys. Assemblage per-lot records share a source key and are
// disambiguated by LotIndex.
const (
	SourceGeoservice            = "geoservice"
	SourceZola                  = "zola"
	SourceZoningResolution      = "zoning_resolution"
	SourceAssemblageInput       = "assemblage_input"
	SourceAssemblageAggregation = "assemblage_aggregation"
	SourceZoningConsistency     = "assemblage_zoning_consistency"
	SourceContaminationRisk     = "assemblage_contamination_risk"
)

// Report represents one feasibility request. The orchestrator is the only
// writer; reports are never deleted.
type Report struct {
	ID                string       `json:"id"`
	Type              ReportType   `json:"type"`
	Status            ReportStatus `json:"status"`
	Addresses         []string     `json:"addresses"`
	OrgID             string       `json:"org_id"`
	UserID            string       `json:"user_id"`
	ClientID          string       `json:"client_id,omitempty"`
	BBL               string       `json:"bbl,omitempty"`
	NormalizedAddress string       `json:"normalized_address,omitempty"`
	Latitude          *float64     `json:"latitude,omitempty"`
	Longitude         *float64     `json:"longitude,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// ResultStatus is the outcome of a single provider or computation stage.
type ResultStatus string

const (
	ResultSucceeded ResultStatus = "succeeded"
	ResultFailed    ResultStatus = "failed"
)

// ResultRecord is an append-only fact attached to a report. Records are
// immutable once written; the orchestrator only ever appends new ones.
type ResultRecord struct {
	ID        string          `json:"id"`
	ReportID  string          `json:"report_id"`
	Source    string          `json:"source"`
	LotIndex  *int            `json:"lot_index,omitempty"`
	Status    ResultStatus    `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
	Position  int             `json:"position"`
	CreatedAt time.Time       `json:"created_at"`
}

// ParcelRef carries the parcel identity fields written back onto a report
// after the critical geoservice stage succeeds.
type ParcelRef struct {
	BBL               string   `json:"bbl"`
	NormalizedAddress string   `json:"normalized_address"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
}
