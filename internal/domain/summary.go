package domain

type UserSummary struct {
	User           *User    `json:"user"`
	IsEmployer     *bool    `json:"isEmployer,omitempty"`
	Interests      []string `json:"interests"`
	CompletedTasks int      `json:"completedTasks"`
	LikedTasks     int      `json:"likedTasks"`
	DislikedTasks  int      `json:"dislikedTasks"`
	OwnedTasks     int      `json:"ownedTasks"`
	ActiveOwned    int      `json:"activeOwnedTasks"`
	Insights       []string `json:"insights"`
}

// PageRequest selects one page of an ordered result. Page is 1-based.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Bounds returns the half-open slice range of the page within total items,
// after clamping PageSize into [1, maxSize] with defaultSize for zero.
func (p PageRequest) Bounds(total, defaultSize, maxSize int) (start, end, size int) {
	size = p.PageSize
	if size <= 0 {
		size = defaultSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	if size <= 0 || page-1 >= (total+size-1)/size {
		start = total
	} else {
		start = (page - 1) * size
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end, size
}
