package resumes

import "time"

// VersionResponse is the API shape for a resume version.
type VersionResponse struct {
	ID        string    `json:"id"`
	Number    int       `json:"versionNumber"`
	Status    string    `json:"status"`
	Content   Content   `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VersionSummary omits the content payload for list views.
type VersionSummary struct {
	ID        string    `json:"id"`
	Number    int       `json:"versionNumber"`
	Status    string    `json:"status"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(v Version) VersionResponse {
	return VersionResponse{
		ID:        v.ID,
		Number:    v.Number,
		Status:    v.Status(),
		Content:   v.Content,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func toSummary(v Version) VersionSummary {
	return VersionSummary{
		ID:        v.ID,
		Number:    v.Number,
		Status:    v.Status(),
		Name:      v.Content.Header.Name,
		Title:     v.Content.Header.Title,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
