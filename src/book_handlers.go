package main

import (
	"bitlibro/src/middlewares"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func bookHandlers(g *gin.RouterGroup, s *server) *gin.RouterGroup {
	view := middlewares.RequireCapability(types.CAP_VIEW_CATALOG)
	manage := middlewares.RequireCapability(types.CAP_MANAGE_CATALOG)
	g.
		GET("/books", view, func(ctx *gin.Context) {
			var q types.BookQueryFilters
			if err := ctx.ShouldBindQuery(&q); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			page, err := s.books.ListBooks(ctx, q)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", page)
		}).
		GET("/books/:id", view, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			book, err := s.books.GetBook(ctx, params.ID)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", book)
		}).
		GET("/books/:id/availability", view, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			var q types.AvailabilityQuery
			if err := ctx.ShouldBindQuery(&q); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			res, err := s.reservations.CheckAvailability(ctx, params.ID, q)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", res)
		}).
		POST("/books", manage, func(ctx *gin.Context) {
			var body types.CreateBookRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			book, err := s.books.CreateBook(ctx, &body)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusCreated, "book created", book)
		}).
		PUT("/books/:id", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			var body types.UpdateBookRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			book, err := s.books.UpdateBook(ctx, params.ID, &body)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "book updated", book)
		}).
		DELETE("/books/:id", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			if err := s.books.DeleteBook(ctx, params.ID); err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "book deleted", nil)
		}).
		DELETE("/books/:id/images", manage, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			n, err := s.books.DeleteBookImages(ctx, params.ID)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "images deleted", gin.H{"deleted": n})
		}).
		DELETE("/books/:id/images/:imageId", manage, func(ctx *gin.Context) {
			var params types.BookImageRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			if err := s.books.DeleteBookImage(ctx, params.ID, params.ImageID); err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "image deleted", nil)
		})
	return g
}
