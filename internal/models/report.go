package models

import "time"

// ReportFilter scopes dashboard statistics and exports.
type ReportFilter struct {
	From     *time.Time
	To       *time.Time
	Status   *ComplaintStatus
	Category *ComplaintCategory
	Urgency  *Urgency
}

// StatsPoint is one labelled bucket in a distribution.
type StatsPoint struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TrendPoint is one day in the submission trend series.
type TrendPoint struct {
	Date      string `json:"date"`
	Submitted int    `json:"submitted"`
	Resolved  int    `json:"resolved"`
}

// OfficerStatsPoint summarises one officer's workload and throughput.
type OfficerStatsPoint struct {
	OfficerID      string  `json:"officer_id"`
	OfficerName    string  `json:"officer_name"`
	Assigned       int     `json:"assigned"`
	Resolved       int     `json:"resolved"`
	ResolutionRate float64 `json:"resolution_rate"`
}

// DashboardStats is the admin dashboard aggregate payload.
type DashboardStats struct {
	TotalComplaints    int                 `json:"total_complaints"`
	OpenComplaints     int                 `json:"open_complaints"`
	ResolvedComplaints int                 `json:"resolved_complaints"`
	EscalatedCount     int                 `json:"escalated_count"`
	ByStatus           []StatsPoint        `json:"by_status"`
	ByCategory         []StatsPoint        `json:"by_category"`
	ByUrgency          []StatsPoint        `json:"by_urgency"`
	OfficerPerformance []OfficerStatsPoint `json:"officer_performance"`
	Trend              []TrendPoint        `json:"trend"`
	GeneratedAt        time.Time           `json:"generated_at"`
}
