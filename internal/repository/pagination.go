package repository

import "gorm.io/gorm"

// Page is one slice of an ordered listing. A page past the end is empty, not an error.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func (p *Page[T]) HasNext() bool { return p.Page < p.TotalPages }
func (p *Page[T]) HasPrev() bool { return p.Page > 1 }

// paginate counts query, then loads the requested page with order and
// preloads applied. Preloads stay off the count.
func paginate[T any](query *gorm.DB, order string, page, perPage int, preloads ...string) (*Page[T], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	result := &Page[T]{
		Items:      []T{},
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	}

	if int64((page-1)*perPage) >= total {
		return result, nil
	}

	find := query.Session(&gorm.Session{})
	for _, p := range preloads {
		find = find.Preload(p)
	}
	if err := find.Order(order).Offset((page - 1) * perPage).Limit(perPage).Find(&result.Items).Error; err != nil {
		return nil, err
	}
	return result, nil
}
