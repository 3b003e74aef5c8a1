package handler

import (
	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

// --- Request → Service input ---

func toCustomerFields(req customerRequest) domain.CustomerFields {
	return domain.CustomerFields{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		PostalCode:        req.PostalCode,
		Country:           req.Country,
		BusinessName:      req.BusinessName,
		BusinessType:      req.BusinessType,
		BusinessRegNumber: req.BusinessRegNumber,
		TINNumber:         req.TINNumber,
		VATNumber:         req.VATNumber,
		Activities:        req.Activities,
	}
}

func toUpdateUserInput(req updateUserRequest) ports.UpdateUserInput {
	in := ports.UpdateUserInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	return in
}

// --- Domain → Response ---

func toUserResponse(i *domain.Identity) userResponse {
	return userResponse{
		ID:          i.ID,
		Username:    i.Username,
		Email:       i.Email,
		FirstName:   i.FirstName,
		LastName:    i.LastName,
		DisplayName: i.DisplayName(),
		Role:        string(i.Role),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toProfileResponse(p domain.Principal) profileResponse {
	return profileResponse{
		ID:          p.ID,
		Username:    p.Username,
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DisplayName: p.DisplayName,
		Role:        string(p.Role),
	}
}

func toCustomerResponse(c *domain.Customer) customerResponse {
	return customerResponse{
		ID:                c.ID,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Email:             c.Email,
		Phone:             c.Phone,
		Address:           c.Address,
		City:              c.City,
		State:             c.State,
		PostalCode:        c.PostalCode,
		Country:           c.Country,
		BusinessName:      c.BusinessName,
		BusinessType:      c.BusinessType,
		BusinessRegNumber: c.BusinessRegNumber,
		TINNumber:         c.TINNumber,
		VATNumber:         c.VATNumber,
		Activities:        c.Activities,
		CreatedBy:         c.CreatedBy,
		CreatedByName:     c.CreatedByName,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func toCustomerResponses(items []*domain.Customer) []customerResponse {
	out := make([]customerResponse, len(items))
	for i, c := range items {
		out[i] = toCustomerResponse(c)
	}
	return out
}

func toPagination[T any](r *ports.ListResult[T]) paginationResponse {
	return paginationResponse{
		Total:      r.Total,
		Page:       r.Page,
		PageSize:   r.PageSize,
		TotalPages: r.TotalPages,
	}
}
