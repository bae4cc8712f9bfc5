package dto

// SaveVideoRequest stores an external catalog video as a lesson.
type SaveVideoRequest struct {
	VideoID         string   `json:"video_id" validate:"required,max=64"`
	Title           string   `json:"title" validate:"required,max=255"`
	Description     string   `json:"description" validate:"max=2000"`
	Thumbnail       string   `json:"thumbnail" validate:"omitempty,url,max=512"`
	DurationSeconds int      `json:"duration_seconds" validate:"gte=0"`
	Duration        string   `json:"duration"`
	GoalID          *uint    `json:"goal_id"`
	Category        string   `json:"category" validate:"max=64"`
	Tags            []string `json:"tags"`
}
