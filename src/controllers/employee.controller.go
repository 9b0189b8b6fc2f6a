package controllers

import (
	"bitlibro/src/models"
	"bitlibro/src/models/scopes"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"
)

// UserController serves both staff and client listings; role picks the rows it sees.
type UserController struct {
	db   *gorm.DB
	role types.Role
}

func NewEmployeeController(db *gorm.DB) *UserController {
	return &UserController{db: db, role: types.ROLE_EMPLOYEE}
}

func NewClientController(db *gorm.DB) *UserController {
	return &UserController{db: db, role: types.ROLE_CLIENT}
}

func (c *UserController) noun() string {
	return strings.ToLower(c.role.String())
}

func (c *UserController) List(ctx context.Context, q types.UserQueryFilters) (types.PagedResponse[models.User], error) {
	page, size := utils.PageOf(q.PageQuery)
	query := func() *gorm.DB {
		return c.db.WithContext(ctx).
			Model(&models.User{}).
			Scopes(
				scopes.WithRole(c.role),
				scopes.ILike(q.Name, "users.name"),
				scopes.ILike(q.LastName, "users.last_name"),
				scopes.ILike(q.Ci, "users.ci"),
			)
	}
	var total int64
	if err := query().Count(&total).Error; err != nil {
		return types.PagedResponse[models.User]{}, err
	}
	var users []models.User
	if err := query().
		Order("users.last_name").
		Order("users.name").
		Scopes(scopes.Paginate(page, size)).
		Find(&users).
		Error; err != nil {
		return types.PagedResponse[models.User]{}, err
	}
	return types.NewPagedResponse(users, page, size, total), nil
}

func (c *UserController) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := c.db.WithContext(ctx).
		Scopes(scopes.WithRole(c.role)).
		First(&user, id).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("%s %d not found", c.noun(), id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *UserController) CreateEmployee(ctx context.Context, body *types.CreateEmployeeRequestBody) (*models.User, error) {
	db := c.db.WithContext(ctx)
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if err := identityFree(db, 0, email, body.Ci); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		log.Printf("Error hashing password: %s\n", err.Error())
		return nil, err
	}
	user := models.User{
		Email:        email,
		Username:     email,
		PasswordHash: hash,
		Name:         body.Name,
		LastName:     body.LastName,
		Ci:           body.Ci,
		Role:         types.ROLE_EMPLOYEE,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("Error creating employee %s: %s\n", email, err.Error())
		return nil, utils.TranslatePgError(err)
	}
	return &user, nil
}

func (c *UserController) UpdateEmployee(ctx context.Context, id uint, body *types.UpdateEmployeeRequestBody) (*models.User, error) {
	user, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	db := c.db.WithContext(ctx)
	if err := identityFree(db, id, "", body.Ci); err != nil {
		return nil, err
	}
	if err := db.Model(user).Updates(map[string]any{
		"name":      body.Name,
		"last_name": body.LastName,
		"ci":        body.Ci,
	}).Error; err != nil {
		return nil, utils.TranslatePgError(err)
	}
	user.Name, user.LastName, user.Ci = body.Name, body.LastName, body.Ci
	return user, nil
}

// DeleteEmployee keeps employees that still own pending reservations.
func (c *UserController) DeleteEmployee(ctx context.Context, id uint) error {
	if _, err := c.Get(ctx, id); err != nil {
		return err
	}
	db := c.db.WithContext(ctx)
	var pending int64
	if err := db.Model(&models.Reservation{}).
		Scopes(scopes.WithPendingStatus).
		Where("reservations.employee_id = ?", id).
		Count(&pending).
		Error; err != nil {
		return err
	}
	if pending > 0 {
		return types.NewConflictError("employee %d has %d pending reservation(s)", id, pending)
	}
	return db.Delete(&models.User{}, id).Error
}

// identityFree checks the unique user columns, soft-deleted rows included.
func identityFree(db *gorm.DB, id uint, email, ci string) error {
	var taken []models.User
	q := db.Unscoped().Select("id", "email", "ci").Where("id <> ?", id)
	if email != "" {
		q = q.Where(db.Where("email = ?", email).Or("ci = ?", ci))
	} else {
		q = q.Where("ci = ?", ci)
	}
	if err := q.Find(&taken).Error; err != nil {
		return err
	}
	for _, u := range taken {
		if email != "" && u.Email == email {
			return types.NewConflictError("email %s is already registered", email)
		}
		return types.NewConflictError("ci %s is already registered", ci)
	}
	return nil
}
