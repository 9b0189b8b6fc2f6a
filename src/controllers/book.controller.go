package controllers

import (
	"bitlibro/src/config"
	"bitlibro/src/lib"
	"bitlibro/src/models"
	"bitlibro/src/models/scopes"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookController struct {
	db    *gorm.DB
	files lib.FileStore
}

func NewBookController(db *gorm.DB, files lib.FileStore) *BookController {
	return &BookController{db: db, files: files}
}

func (c *BookController) ListBooks(ctx context.Context, q types.BookQueryFilters) (types.PagedResponse[models.Book], error) {
	page, size := utils.PageOf(q.PageQuery)
	db := c.db.WithContext(ctx)
	query := func() *gorm.DB {
		tx := db.Model(&models.Book{}).Scopes(
			scopes.ILike(q.Name, "books.name"),
			scopes.ILike(q.Author, "books.author"),
			scopes.ILike(q.ISBN, "books.isbn"),
		)
		if q.GenreID > 0 {
			tx = tx.Where("books.id IN (?)", db.Table("book_genres").Select("book_id").Where("genre_id = ?", q.GenreID))
		}
		return tx
	}
	var total int64
	if err := query().Count(&total).Error; err != nil {
		return types.PagedResponse[models.Book]{}, err
	}
	var books []models.Book
	err := query().
		Preload("Genres").
		Preload("Images").
		Order("books.name").
		Scopes(scopes.Paginate(page, size)).
		Find(&books).
		Error
	if err != nil {
		return types.PagedResponse[models.Book]{}, err
	}
	return types.NewPagedResponse(books, page, size, total), nil
}

func (c *BookController) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := c.db.WithContext(ctx).
		Preload("Genres").
		Preload("Images").
		First(&book, id).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("book %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *BookController) CreateBook(ctx context.Context, body *types.CreateBookRequestBody) (*models.Book, error) {
	if len(body.Images) < 1 {
		return nil, types.NewValidationError("at least one image is required")
	}
	if err := validateImages(body.Images); err != nil {
		return nil, err
	}
	db := c.db.WithContext(ctx)
	if err := c.checkUnique(db, 0, body.Name, body.ISBN); err != nil {
		return nil, err
	}
	genres, err := loadGenres(db, body.GenreIDs)
	if err != nil {
		return nil, err
	}
	images, err := c.storeImages(ctx, body.Name, body.Images)
	if err != nil {
		return nil, err
	}
	book := models.Book{
		Name:          body.Name,
		ISBN:          body.ISBN,
		Author:        body.Author,
		YearPublished: body.YearPublished,
		Editorial:     body.Editorial,
		Genres:        genres,
		Images:        images,
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&book).Error
	}); err != nil {
		c.deleteFiles(ctx, images)
		log.Printf("Error creating book %s: %s\n", body.Name, err.Error())
		return nil, utils.TranslatePgError(err)
	}
	return c.GetBook(ctx, book.ID)
}

// UpdateBook replaces the book's fields and genres. Uploaded images, when present,
// replace every existing image.
func (c *BookController) UpdateBook(ctx context.Context, id uint, body *types.UpdateBookRequestBody) (*models.Book, error) {
	if err := validateImages(body.Images); err != nil {
		return nil, err
	}
	book, err := c.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	db := c.db.WithContext(ctx)
	if err := c.checkUnique(db, id, body.Name, body.ISBN); err != nil {
		return nil, err
	}
	genres, err := loadGenres(db, body.GenreIDs)
	if err != nil {
		return nil, err
	}
	var newImages []*models.Image
	if len(body.Images) > 0 {
		if newImages, err = c.storeImages(ctx, body.Name, body.Images); err != nil {
			return nil, err
		}
	}
	oldImages := book.Images

	err = db.Transaction(func(tx *gorm.DB) error {
		book.Name = body.Name
		book.ISBN = body.ISBN
		book.Author = body.Author
		if body.YearPublished != "" {
			book.YearPublished = body.YearPublished
		}
		if body.Editorial != "" {
			book.Editorial = body.Editorial
		}
		if err := tx.Omit("Genres", "Images").Save(book).Error; err != nil {
			return err
		}
		if err := tx.Model(book).Association("Genres").Replace(genres); err != nil {
			return err
		}
		if len(newImages) == 0 {
			return nil
		}
		if err := tx.Where("book_id = ?", book.ID).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		for _, img := range newImages {
			img.BookID = book.ID
		}
		return tx.Create(&newImages).Error
	})
	if err != nil {
		c.deleteFiles(ctx, newImages)
		log.Printf("Error updating book %d: %s\n", id, err.Error())
		return nil, utils.TranslatePgError(err)
	}
	if len(newImages) > 0 {
		c.deleteFiles(ctx, oldImages)
	}
	return c.GetBook(ctx, id)
}

// DeleteBook removes the book with its images. Books with pending reservations stay.
// The book row is locked first so no reservation can be taken while it is deleted.
func (c *BookController) DeleteBook(ctx context.Context, id uint) error {
	var images []*models.Image
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book models.Book
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&book, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewNotFoundError("book %d not found", id)
		}
		if err != nil {
			return err
		}
		var pending int64
		if err := tx.Model(&models.Reservation{}).
			Where("reservations.book_id = ?", id).
			Scopes(scopes.WithPendingStatus).
			Count(&pending).
			Error; err != nil {
			return err
		}
		if pending > 0 {
			return types.NewConflictError("book %d has %d pending reservation(s)", id, pending)
		}
		if err := tx.Where("book_id = ?", id).Find(&images).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&book).Association("Genres").Clear(); err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
	if err != nil {
		return utils.TranslatePgError(err)
	}
	c.deleteFiles(ctx, images)
	return nil
}

func (c *BookController) DeleteBookImage(ctx context.Context, bookID, imageID uint) error {
	var image models.Image
	db := c.db.WithContext(ctx)
	err := db.Where("book_id = ?", bookID).First(&image, imageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NewNotFoundError("image %d not found for book %d", imageID, bookID)
	}
	if err != nil {
		return err
	}
	if err := db.Delete(&image).Error; err != nil {
		return err
	}
	c.deleteFiles(ctx, []*models.Image{&image})
	return nil
}

func (c *BookController) DeleteBookImages(ctx context.Context, bookID uint) (int, error) {
	book, err := c.GetBook(ctx, bookID)
	if err != nil {
		return 0, err
	}
	if len(book.Images) == 0 {
		return 0, nil
	}
	if err := c.db.WithContext(ctx).Where("book_id = ?", bookID).Delete(&models.Image{}).Error; err != nil {
		return 0, err
	}
	c.deleteFiles(ctx, book.Images)
	return len(book.Images), nil
}

func (c *BookController) checkUnique(db *gorm.DB, id uint, name, isbn string) error {
	var taken []models.Book
	err := db.Unscoped().
		Select("id", "name", "isbn").
		Where("(name = ? OR isbn = ?) AND id <> ?", name, isbn, id).
		Find(&taken).
		Error
	if err != nil {
		return err
	}
	for _, b := range taken {
		if b.Name == name {
			return types.NewConflictError("a book named %q already exists", name)
		}
		return types.NewConflictError("ISBN %s is already registered", isbn)
	}
	return nil
}

func loadGenres(db *gorm.DB, ids []uint) ([]*models.Genre, error) {
	if len(ids) == 0 {
		return nil, types.NewValidationError("at least one genre is required")
	}
	var genres []*models.Genre
	if err := db.Scopes(scopes.WithIDs(ids...)).Find(&genres).Error; err != nil {
		return nil, err
	}
	found := make(map[uint]bool, len(genres))
	for _, g := range genres {
		found[g.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, types.NewNotFoundError("genre %d not found", id)
		}
	}
	return genres, nil
}

func validateImages(files []*multipart.FileHeader) error {
	if len(files) > config.MAX_BOOK_IMAGES {
		return types.NewValidationError("a book can have at most %d images", config.MAX_BOOK_IMAGES)
	}
	var details []string
	for _, fh := range files {
		if _, ok := utils.AllowedImageExtension(fh.Filename); !ok {
			details = append(details, fmt.Sprintf("%s: only .jpg, .jpeg and .png files are allowed", fh.Filename))
		}
		if fh.Size > config.MAX_IMAGE_SIZE {
			details = append(details, fmt.Sprintf("%s: images cannot exceed 2MB", fh.Filename))
		}
	}
	if len(details) > 0 {
		return types.NewValidationErrors(details)
	}
	return nil
}

func contentTypeOf(ext string) string {
	if ext == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}

func (c *BookController) storeImages(ctx context.Context, bookName string, files []*multipart.FileHeader) ([]*models.Image, error) {
	images := make([]*models.Image, 0, len(files))
	for _, fh := range files {
		ext, _ := utils.AllowedImageExtension(fh.Filename)
		f, err := fh.Open()
		if err != nil {
			c.deleteFiles(ctx, images)
			return nil, err
		}
		key, id := lib.BookImageKey(bookName, ext)
		url, err := c.files.Put(ctx, key, contentTypeOf(ext), f)
		f.Close()
		if err != nil {
			log.Printf("Error storing image %s: %s\n", fh.Filename, err.Error())
			c.deleteFiles(ctx, images)
			return nil, err
		}
		images = append(images, &models.Image{UUID: id, URL: url})
	}
	return images, nil
}

func (c *BookController) deleteFiles(ctx context.Context, images []*models.Image) {
	for _, img := range images {
		if err := c.files.Delete(ctx, img.URL); err != nil {
			log.Printf("Error deleting image file %s: %s\n", img.URL, err.Error())
		}
	}
}
