package controllers

import (
	"bitlibro/src/models"
	"bitlibro/src/models/scopes"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type GenreController struct {
	db *gorm.DB
}

func NewGenreController(db *gorm.DB) *GenreController {
	return &GenreController{db: db}
}

func (c *GenreController) ListGenres(ctx context.Context, q types.GenreQueryFilters) (types.PagedResponse[models.Genre], error) {
	page, size := utils.PageOf(q.PageQuery)
	db := c.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Genre{}).Scopes(scopes.ILike(q.Name, "genres.name")).Count(&total).Error; err != nil {
		return types.PagedResponse[models.Genre]{}, err
	}
	var genres []models.Genre
	if err := db.Model(&models.Genre{}).
		Scopes(scopes.ILike(q.Name, "genres.name"), scopes.Paginate(page, size)).
		Order("genres.name").
		Find(&genres).
		Error; err != nil {
		return types.PagedResponse[models.Genre]{}, err
	}
	return types.NewPagedResponse(genres, page, size, total), nil
}

func (c *GenreController) GetGenre(ctx context.Context, id uint) (*models.Genre, error) {
	var genre models.Genre
	err := c.db.WithContext(ctx).First(&genre, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("genre %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

func (c *GenreController) CreateGenre(ctx context.Context, body *types.CreateGenreRequestBody) (*models.Genre, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return nil, types.NewValidationError("name is required")
	}
	db := c.db.WithContext(ctx)
	if err := genreNameFree(db, 0, name); err != nil {
		return nil, err
	}
	genre := models.Genre{Name: name}
	if err := db.Create(&genre).Error; err != nil {
		return nil, utils.TranslatePgError(err)
	}
	return &genre, nil
}

func (c *GenreController) UpdateGenre(ctx context.Context, id uint, body *types.CreateGenreRequestBody) (*models.Genre, error) {
	genre, err := c.GetGenre(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return nil, types.NewValidationError("name is required")
	}
	db := c.db.WithContext(ctx)
	if err := genreNameFree(db, id, name); err != nil {
		return nil, err
	}
	if err := db.Model(genre).Update("name", name).Error; err != nil {
		return nil, utils.TranslatePgError(err)
	}
	genre.Name = name
	return genre, nil
}

// DeleteGenre refuses to remove a genre that is still assigned to a book.
func (c *GenreController) DeleteGenre(ctx context.Context, id uint) error {
	if _, err := c.GetGenre(ctx, id); err != nil {
		return err
	}
	db := c.db.WithContext(ctx)
	var inUse int64
	if err := db.Table("book_genres").
		Joins("JOIN books ON books.id = book_genres.book_id AND books.deleted_at IS NULL").
		Where("book_genres.genre_id = ?", id).
		Count(&inUse).
		Error; err != nil {
		return err
	}
	if inUse > 0 {
		return types.NewConflictError("genre %d is assigned to %d book(s)", id, inUse)
	}
	return db.Delete(&models.Genre{}, id).Error
}

func genreNameFree(db *gorm.DB, id uint, name string) error {
	var count int64
	if err := db.Unscoped().
		Model(&models.Genre{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, id).
		Count(&count).
		Error; err != nil {
		return err
	}
	if count > 0 {
		return types.NewConflictError("genre %q already exists", name)
	}
	return nil
}
