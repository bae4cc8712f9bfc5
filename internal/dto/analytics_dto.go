package dto

// DayBucket aggregates completions for one calendar day. Buckets appear in
// first-occurrence order and each day occurs exactly once.
type DayBucket struct {
	Date      string `json:"date"`
	Lessons   int    `json:"lessons"`
	TimeSpent int    `json:"time_spent"`
}

// CategoryBucket aggregates completions for one goal category.
type CategoryBucket struct {
	Category  string `json:"category"`
	Lessons   int    `json:"lessons"`
	TimeSpent int    `json:"time_spent"`
}

// PeriodComparison reports the equal-length window immediately preceding the
// primary one, for percentage-change display.
type PeriodComparison struct {
	PreviousPeriodLessons int `json:"previous_period_lessons"`
	PreviousPeriodTime    int `json:"previous_period_time"`
}

// AnalyticsResponse is the bucketed view of a lookback window.
type AnalyticsResponse struct {
	Period            string           `json:"period"`
	TotalLessons      int              `json:"total_lessons"`
	TotalTime         int              `json:"total_time"`
	DailyProgress     []DayBucket      `json:"daily_progress"`
	CategoryBreakdown []CategoryBucket `json:"category_breakdown"`
	Comparison        PeriodComparison `json:"comparison"`
	CacheHit          bool             `json:"cache_hit,omitempty"`
}
