package pagination

// Pagination carries offset/limit query parameters.
type Pagination struct {
	Offset int `form:"offset,default=0"`
	Limit  int `form:"limit,default=50" validate:"gte=1,lte=250"` // Min 1, Max 250
}

// Normalize clamps out-of-range values to usable defaults.
func (p Pagination) Normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit < 1 {
		p.Limit = 50
	}
	if p.Limit > 250 {
		p.Limit = 250
	}
	return p
}

// PageInfo echoes the applied window alongside the total row count.
type PageInfo struct {
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Total  int64 `json:"total"`
}
