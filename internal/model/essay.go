package model

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Essay is the stored document row. OwnerID never changes after creation.
type Essay struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"-"`
	Author    string    `json:"author,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EssayListItem omits content for list views.
type EssayListItem struct {
	ID        string    `json:"id"`
	Author    string    `json:"author,omitempty"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateEssayRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateEssayRequest carries a partial update; nil fields are left unchanged.
type UpdateEssayRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type EssayResponse struct {
	Essay Essay `json:"essay"`
}

type EssayListResponse struct {
	Essays []EssayListItem `json:"essays"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
