package types

import (
	"math"
	"mime/multipart"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type ReservationStatus string

const (
	RESERVATION_PENDING   ReservationStatus = "Pending"
	RESERVATION_FINISHED  ReservationStatus = "Finished"
	RESERVATION_CANCELLED ReservationStatus = "Cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case RESERVATION_PENDING, RESERVATION_FINISHED, RESERVATION_CANCELLED:
		return true
	}
	return false
}

func (s ReservationStatus) Terminal() bool {
	return s == RESERVATION_FINISHED || s == RESERVATION_CANCELLED
}

// CanTransitionTo allows Pending to move anywhere and keeps terminal states final.
// Re-applying the current status is always allowed.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return s == RESERVATION_PENDING
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type BookImageRequestParams struct {
	ID      uint `uri:"id" binding:"required"`
	ImageID uint `uri:"imageId" binding:"required"`
}

type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize fills in the defaults for missing paging values.
func (p PageQuery) Normalize(defaultSize, maxSize int) (page int, size int) {
	page, size = p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}

type PagedResponse[T any] struct {
	Data         []T   `json:"data"`
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
	TotalRecords int64 `json:"total_records"`
	TotalPages   int   `json:"total_pages"`
}

func NewPagedResponse[T any](data []T, page, pageSize int, total int64) PagedResponse[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return PagedResponse[T]{
		Data:         data,
		Page:         page,
		PageSize:     pageSize,
		TotalRecords: total,
		TotalPages:   pages,
	}
}

type BookQueryFilters struct {
	PageQuery
	Name    string `form:"name"`
	Author  string `form:"author"`
	ISBN    string `form:"isbn"`
	GenreID uint   `form:"genre_id"`
}

type GenreQueryFilters struct {
	PageQuery
	Name string `form:"name"`
}

type UserQueryFilters struct {
	PageQuery
	Name     string `form:"name"`
	LastName string `form:"last_name"`
	Ci       string `form:"ci"`
}

type ReservationQueryFilters struct {
	PageQuery
	Status       string `form:"status" binding:"omitempty,oneof=Pending Finished Cancelled"`
	ClientName   string `form:"client_name"`
	EmployeeName string `form:"employee_name"`
	StartDate    string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate      string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type AvailabilityQuery struct {
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"required,datetime=2006-01-02,gtedate=StartDate"`
}

// ReservationFilter is the storage-facing form of ReservationQueryFilters.
type ReservationFilter struct {
	Status       ReservationStatus
	ClientName   string
	EmployeeName string
	From         *time.Time
	To           *time.Time
	EmployeeID   uint
	ClientID     uint
	OrderBy      string
	Page         int
	PageSize     int
}

const (
	ORDER_CREATED_DESC = "reservations.created_at DESC"
	ORDER_START_DESC   = "reservations.start_date DESC"
)

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateGenreRequestBody struct {
	Name string `json:"name" binding:"required,max=50"`
}

type CreateBookRequestBody struct {
	Name          string                  `form:"name" binding:"required,max=100"`
	ISBN          string                  `form:"isbn" binding:"required,max=20"`
	Author        string                  `form:"author" binding:"required,max=100"`
	YearPublished string                  `form:"year_published" binding:"required,len=4,numeric"`
	Editorial     string                  `form:"editorial" binding:"required,max=100"`
	GenreIDs      []uint                  `form:"genre_ids" binding:"required,min=1"`
	Images        []*multipart.FileHeader `form:"images" binding:"required,min=1,max=3"`
}

type UpdateBookRequestBody struct {
	Name          string                  `form:"name" binding:"required,max=100"`
	ISBN          string                  `form:"isbn" binding:"required,max=20"`
	Author        string                  `form:"author" binding:"required,max=100"`
	YearPublished string                  `form:"year_published" binding:"omitempty,len=4,numeric"`
	Editorial     string                  `form:"editorial" binding:"omitempty,max=100"`
	GenreIDs      []uint                  `form:"genre_ids" binding:"required,min=1"`
	Images        []*multipart.FileHeader `form:"images" binding:"omitempty,max=3"`
}

type CreateEmployeeRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,max=50"`
	LastName string `json:"last_name" binding:"required,max=50"`
	Ci       string `json:"ci" binding:"required,len=10"`
}

type UpdateEmployeeRequestBody struct {
	Name     string `json:"name" binding:"required,max=50"`
	LastName string `json:"last_name" binding:"required,max=50"`
	Ci       string `json:"ci" binding:"required,len=10"`
}

type CreateReservationRequestBody struct {
	BookID    uint   `json:"book_id" binding:"required"`
	ClientID  *uint  `json:"client_id,omitempty" binding:"omitempty,min=1"`
	Name      string `json:"name,omitempty" binding:"omitempty,max=50"`
	LastName  string `json:"last_name,omitempty" binding:"omitempty,max=50"`
	Ci        string `json:"ci,omitempty" binding:"omitempty,len=10"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02,notpastdate"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02,gtdate=StartDate"`
}

func (b *CreateReservationRequestBody) ClientSpec() ClientSpec {
	return ClientSpec{
		ClientID: b.ClientID,
		Name:     b.Name,
		LastName: b.LastName,
		Ci:       b.Ci,
	}
}

type UpdateReservationRequestBody struct {
	BookID  *uint              `json:"book_id,omitempty" binding:"omitempty,min=1"`
	EndDate *string            `json:"end_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Status  *ReservationStatus `json:"status,omitempty" binding:"omitempty,oneof=Pending Finished Cancelled"`
}

// ClientSpec names the borrower: either an existing client or the data for a new one.
type ClientSpec struct {
	ClientID *uint
	Name     string
	LastName string
	Ci       string
}

func (c ClientSpec) HasExisting() bool {
	return c.ClientID != nil && *c.ClientID > 0
}

func (c ClientSpec) HasNew() bool {
	return c.Name != "" || c.LastName != "" || c.Ci != ""
}

func (c ClientSpec) Validate() error {
	switch {
	case c.HasExisting() && c.HasNew():
		return NewValidationError("provide either an existing client or the new client's data, not both")
	case !c.HasExisting() && !c.HasNew():
		return NewValidationError("a client is required: provide client_id or name, last_name and ci")
	case c.HasNew() && (c.Name == "" || c.LastName == "" || c.Ci == ""):
		return NewValidationError("name, last_name and ci are required to register a new client")
	}
	return nil
}

type AuthUser struct {
	ID       uint     `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	LastName string   `json:"last_name"`
	Ci       string   `json:"ci"`
	Roles    []string `json:"roles"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      AuthUser  `json:"user"`
}

type AvailabilityResponse struct {
	BookID    uint   `json:"book_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Available bool   `json:"available"`
}

type ReservationEvent struct {
	Type          string            `json:"type"`
	ReservationID uint              `json:"reservation_id"`
	BookID        uint              `json:"book_id"`
	EmployeeID    uint              `json:"employee_id"`
	Status        ReservationStatus `json:"status"`
	StartDate     string            `json:"start_date"`
	EndDate       string            `json:"end_date"`
	OccurredAt    time.Time         `json:"occurred_at"`
}
