package resumes

import "time"

// Status labels derived from the published/archived flags.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Version is one stored revision of a user's resume. At most one version per
// user carries IsPublished; a published version is never archived.
type Version struct {
	ID          string
	UserID      string
	Number      int
	Content     Content
	PDFKey      string
	IsPublished bool
	IsArchived  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Status maps the flag pair onto a single label.
func (v Version) Status() string {
	switch {
	case v.IsPublished:
		return StatusPublished
	case v.IsArchived:
		return StatusArchived
	default:
		return StatusDraft
	}
}
