package product

// Group folds translation rows into one View per product, in order of first
// appearance. Timestamps come from the last row folded for each product.
func Group(rows []Translation) []View {
	views := make([]View, 0)
	index := make(map[int64]int)

	for _, row := range rows {
		i, ok := index[row.ProductID]
		if !ok {
			i = len(views)
			index[row.ProductID] = i
			views = append(views, View{
				ProductID:   row.ProductID,
				Name:        make(map[string]string),
				Description: make(map[string]string),
			})
		}

		v := &views[i]
		v.Name[row.LanguageCode] = row.Name
		v.Description[row.LanguageCode] = row.Description
		v.CreatedAt = row.CreatedAt
		v.UpdatedAt = row.UpdatedAt
	}
	return views
}

// Paginate returns the page-th slice of size pageLimit (1-indexed). Pages
// past the end are empty. Bounds are checked before multiplying, so the page
// offset never overflows.
func Paginate[T any](items []T, page, pageLimit int) []T {
	if len(items) == 0 || page < 1 || pageLimit < 1 || page-1 > (len(items)-1)/pageLimit {
		return []T{}
	}
	start := (page - 1) * pageLimit
	end := start + min(pageLimit, len(items)-start)
	return items[start:end]
}
