package validator

import (
	"fmt"
	"strings"

	"github.com/futig/rag-playground/internal/entity"
)

func (v *Validator) ValidateCreateThread(req *entity.CreateThreadRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title", entity.ErrMissingField)
	}
	return nil
}

func (v *Validator) ValidateAddMessage(req *entity.AddMessageRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content", entity.ErrMissingField)
	}

	switch entity.RoleFromString(req.Role) {
	case entity.RoleUser, entity.RoleAssistant, entity.RoleSystem:
		return nil
	default:
		return fmt.Errorf("%w: role '%s'", entity.ErrInvalidParameter, req.Role)
	}
}

func (v *Validator) ValidateAdvancedSearch(req *entity.AdvancedSearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query", entity.ErrMissingField)
	}

	switch req.SearchType {
	case entity.SearchTypeSemantic, entity.SearchTypeKeyword, entity.SearchTypeHybrid:
	default:
		return fmt.Errorf("%w: searchType '%s'", entity.ErrInvalidParameter, req.SearchType)
	}

	if req.Page < 0 {
		return fmt.Errorf("%w: page must be >= 0", entity.ErrInvalidParameter)
	}
	if req.Size < 0 {
		return fmt.Errorf("%w: size must be >= 0", entity.ErrInvalidParameter)
	}

	for _, f := range req.Filters {
		if f.Field == "" {
			return fmt.Errorf("%w: filter field", entity.ErrMissingField)
		}
		switch f.Operator {
		case entity.FilterEquals, entity.FilterNotEquals, entity.FilterGreaterThan,
			entity.FilterLessThan, entity.FilterContains, entity.FilterIn:
		case entity.FilterBetween:
			if f.Value2 == nil {
				return fmt.Errorf("%w: BETWEEN filter on '%s' needs value2", entity.ErrMissingField, f.Field)
			}
		default:
			return fmt.Errorf("%w: filter operator '%s'", entity.ErrInvalidParameter, f.Operator)
		}
	}

	if req.Sort != nil && req.Sort.Direction != entity.SortAsc && req.Sort.Direction != entity.SortDesc {
		return fmt.Errorf("%w: sort direction '%s'", entity.ErrInvalidParameter, req.Sort.Direction)
	}

	return nil
}
