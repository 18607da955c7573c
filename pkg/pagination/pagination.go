package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any listing can request.
	MaxLimit = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Envelope is the listing metadata returned alongside every page.
type Envelope struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
}

// Normalize clamps the page to 1 and the limit to the configured bounds.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NewEnvelope computes the page metadata for a total row count.
func NewEnvelope(params Params, totalCount int64) Envelope {
	n := params.Normalize()
	totalPages := int((totalCount + int64(n.Limit) - 1) / int64(n.Limit))
	return Envelope{
		CurrentPage: n.Page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
	}
}
