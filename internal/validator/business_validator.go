package validator

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateCatalogQuery validates list parameters and returns the normalized query
func (bv *BusinessValidator) ValidateCatalogQuery(req *CatalogQueryRequest) (models.CatalogQuery, ValidationErrors) {
	if errs := bv.Validate(req); len(errs) > 0 {
		return models.CatalogQuery{}, errs
	}

	return models.CatalogQuery{
		Search:   strings.TrimSpace(req.Search),
		Page:     req.Page,
		PageSize: req.PageSize,
	}.Normalize(), nil
}

// ValidateChapterCompletion checks the chapter belongs to the course and is published
func (bv *BusinessValidator) ValidateChapterCompletion(chapter *models.Chapter, courseID string) ValidationErrors {
	var errors ValidationErrors

	if chapter.CourseID != courseID {
		errors = append(errors, ValidationError{
			Field:   "chapter_id",
			Message: "chapter does not belong to this course",
			Value:   chapter.ID,
			Rule:    "chapter_course",
		})
	}

	if !chapter.IsPublished {
		errors = append(errors, ValidationError{
			Field:   "chapter_id",
			Message: "chapter is not published",
			Value:   chapter.ID,
			Rule:    "chapter_published",
		})
	}

	return errors
}

func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("search_term", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if unicode.IsControl(r) {
				return false
			}
		}
		return true
	})

	bv.validate.RegisterValidation("page_size", func(fl validator.FieldLevel) bool {
		size := fl.Field().Int()
		return size >= 1 && size <= models.MaxCatalogPageSize
	})

	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).IsValid()
	})
}
