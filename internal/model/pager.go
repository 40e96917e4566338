package model

// Pager carries pagination metadata for the goal list view.
type Pager struct {
	TotalItems  int
	CurrentPage int
	PageSize    int
	TotalPages  int

	// StartPage and EndPage bound the window of page links rendered
	// by the list view (at most 10 links).
	StartPage int
	EndPage   int
}

func NewPager(totalItems, page, pageSize int) Pager {
	if page < 1 {
		page = 1
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	start := page - 5
	end := page + 4
	if start <= 0 {
		end -= start - 1
		start = 1
	}
	if end > totalPages {
		end = totalPages
		if end > 10 {
			start = end - 9
		}
	}

	return Pager{
		TotalItems:  totalItems,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		StartPage:   start,
		EndPage:     end,
	}
}

func (p Pager) HasPrev() bool {
	return p.CurrentPage > 1
}

func (p Pager) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

func (p Pager) Pages() []int {
	var pages []int
	for i := p.StartPage; i <= p.EndPage; i++ {
		pages = append(pages, i)
	}
	return pages
}
