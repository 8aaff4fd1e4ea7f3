package model

// TrendPoint is one month bucket of commitment-change counts.
type TrendPoint struct {
	Month string `db:"month"`
	Count int64  `db:"count"`
}

// StageActivityPoint is one (month, stage) bucket of stage-event counts
// as returned by the grouped query, before pivoting.
type StageActivityPoint struct {
	Month string `db:"month"`
	Stage Stage  `db:"stage"`
	Count int64  `db:"count"`
}

// StageActivitySeries is one month with counts for all six stages,
// pivoted for multi-line chart rendering.
type StageActivitySeries struct {
	Month  string
	Counts map[Stage]int64
}

// BreakdownItem is one slice of the pipeline breakdown, computed from
// the projection table.
type BreakdownItem struct {
	Stage Stage `db:"current_stage"`
	Count int64 `db:"count"`
}

// OwnerJournalCount ...
type OwnerJournalCount struct {
	OwnerID int64 `db:"owner_id"`
	Count   int64 `db:"count"`
}

// AdminSummary is the cross-owner rollup exposed to admins only.
type AdminSummary struct {
	TotalJournals    int64
	TotalCommitments int64
	JournalsByOwner  []OwnerJournalCount
}
