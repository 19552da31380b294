package api

// Paginated is one page of a listing endpoint.
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPaginated assembles a page and derives TotalPages from total and
// pageSize.
func NewPaginated[T any](items []T, page, pageSize, total int) Paginated[T] {
	return Paginated[T]{
		Data:       items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: PageCount(total, pageSize),
	}
}

// PageCount returns ceil(total/pageSize). An empty collection still has one
// (empty) page; a non-positive pageSize is treated as a single page.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// paginatedWire tolerates the two envelope shapes in the wild: flat
// {data,page,pageSize,total,totalPages} and nested {data,pagination:{...}}.
// Some services also name the collection "items".
type paginatedWire[T any] struct {
	Data       []T `json:"data"`
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Pagination *struct {
		Page       int `json:"page"`
		PageSize   int `json:"pageSize"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

func (p *Paginated[T]) UnmarshalJSON(raw []byte) error {
	var wire paginatedWire[T]
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}

	p.Data = wire.Data
	if p.Data == nil {
		p.Data = wire.Items
	}
	if wire.Pagination != nil {
		p.Page = wire.Pagination.Page
		p.PageSize = wire.Pagination.PageSize
		p.Total = wire.Pagination.Total
		p.TotalPages = wire.Pagination.TotalPages
	} else {
		p.Page = wire.Page
		p.PageSize = wire.PageSize
		p.Total = wire.Total
		p.TotalPages = wire.TotalPages
	}
	if p.TotalPages == 0 {
		p.TotalPages = PageCount(p.Total, p.PageSize)
	}
	return nil
}
