package main

import (
	"bitlibro/src/middlewares"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func genreHandlers(g *gin.RouterGroup, s *server) *gin.RouterGroup {
	genres := g.Group("/genres")
	genres.Use(middlewares.RequireCapability(types.CAP_MANAGE_CATALOG))
	genres.
		GET("", func(ctx *gin.Context) {
			var q types.GenreQueryFilters
			if err := ctx.ShouldBindQuery(&q); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			page, err := s.genres.ListGenres(ctx, q)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", page)
		}).
		GET("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			genre, err := s.genres.GetGenre(ctx, params.ID)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", genre)
		}).
		POST("", func(ctx *gin.Context) {
			var body types.CreateGenreRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			genre, err := s.genres.CreateGenre(ctx, &body)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusCreated, "genre created", genre)
		}).
		PUT("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			var body types.CreateGenreRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			genre, err := s.genres.UpdateGenre(ctx, params.ID, &body)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "genre updated", genre)
		}).
		DELETE("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			if err := s.genres.DeleteGenre(ctx, params.ID); err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "genre deleted", nil)
		})
	return genres
}
