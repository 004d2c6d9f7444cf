package models

import "time"

// DashboardSummary is the landing-page overview.
type DashboardSummary struct {
	TotalStudents         int          `json:"total_students"`
	TotalClasses          int          `json:"total_classes"`
	TotalMaterials        int          `json:"total_materials"`
	ActiveSemesterID      string       `json:"active_semester_id,omitempty"`
	ActiveSemesterLabel   string       `json:"active_semester_label,omitempty"`
	AttendanceMonth       string       `json:"attendance_month"`
	AttendancePercentage  float64      `json:"attendance_percentage"`
	AverageFormativeScore float64      `json:"average_formative_score"`
	AverageFormativeGrade string       `json:"average_formative_grade"`
	Weights               WeightConfig `json:"weights"`
	GeneratedAt           time.Time    `json:"generated_at"`
}

// SystemMetrics is a point-in-time summary of process metrics.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	LedgerBuilds             uint64    `json:"ledger_builds"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
