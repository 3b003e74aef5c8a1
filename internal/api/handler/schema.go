package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=50"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

type profileResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// --- Users ---

type userResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type createUserRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=50"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
	Role      string `json:"role"       validate:"omitempty,oneof=admin employee customer"`
}

// updateUserRequest is a partial update: omitted fields are left unchanged.
type updateUserRequest struct {
	FirstName       *string `json:"first_name"       validate:"omitempty,max=100"`
	LastName        *string `json:"last_name"        validate:"omitempty,max=100"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	Role            *string `json:"role"             validate:"omitempty,oneof=admin employee customer"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password"     validate:"omitempty,min=6"`
}

type listUsersResponse struct {
	Data       []userResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// --- Customers ---

type customerRequest struct {
	FirstName         string `json:"first_name"          validate:"required,max=100"`
	LastName          string `json:"last_name"           validate:"required,max=100"`
	Email             string `json:"email"               validate:"required,email"`
	Phone             string `json:"phone"               validate:"required,max=50"`
	Address           string `json:"address"             validate:"max=255"`
	City              string `json:"city"                validate:"max=100"`
	State             string `json:"state"               validate:"max=100"`
	PostalCode        string `json:"postal_code"         validate:"max=20"`
	Country           string `json:"country"             validate:"max=100"`
	BusinessName      string `json:"business_name"       validate:"required,max=255"`
	BusinessType      string `json:"business_type"       validate:"required,max=100"`
	BusinessRegNumber string `json:"business_reg_number" validate:"max=100"`
	TINNumber         string `json:"tin_number"          validate:"required,max=100"`
	VATNumber         string `json:"vat_number"          validate:"required,max=100"`
	Activities        string `json:"activities"`
}

type customerResponse struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	State             string    `json:"state"`
	PostalCode        string    `json:"postal_code"`
	Country           string    `json:"country"`
	BusinessName      string    `json:"business_name"`
	BusinessType      string    `json:"business_type"`
	BusinessRegNumber string    `json:"business_reg_number"`
	TINNumber         string    `json:"tin_number"`
	VATNumber         string    `json:"vat_number"`
	Activities        string    `json:"activities"`
	CreatedBy         string    `json:"created_by"`
	CreatedByName     string    `json:"created_by_name"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type listCustomersResponse struct {
	Data       []customerResponse `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// --- Shared ---

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// --- Dashboard ---

type statsResponse struct {
	TotalCustomers int64 `json:"total_customers"`
	TotalEmployees int64 `json:"total_employees"`
}

type recentCustomersResponse struct {
	Data []customerResponse `json:"data"`
}
