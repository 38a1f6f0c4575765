package validator

// CatalogQueryRequest is bound from the catalog query string
type CatalogQueryRequest struct {
	Search   string `form:"search" json:"search" validate:"max=200,search_term"`
	Page     int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" json:"page_size" validate:"omitempty,page_size"`
}

// CountQueryRequest is bound from the catalog count query string
type CountQueryRequest struct {
	Search string `form:"search" json:"search" validate:"max=200,search_term"`
}

// CourseParams identifies a course in the path
type CourseParams struct {
	CourseID string `uri:"id" validate:"required,max=64"`
}

// ChapterParams identifies a chapter of a course in the path
type ChapterParams struct {
	CourseID  string `uri:"id" validate:"required,max=64"`
	ChapterID string `uri:"chapter_id" validate:"required,max=64"`
}
