package main

import (
	"bitlibro/src/middlewares"
	"bitlibro/src/models"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type reservationTransition func(ctx context.Context, actor types.Actor, id uint) (*models.Reservation, error)

func transitionHandler(message string, apply reservationTransition) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			utils.JSONError(ctx, utils.BindingError(err))
			return
		}
		r, err := apply(ctx.Request.Context(), middlewares.ActorFrom(ctx), params.ID)
		if err != nil {
			utils.JSONError(ctx, err)
			return
		}
		utils.JSONOK(ctx, http.StatusOK, message, r)
	}
}

func reservationHandlers(g *gin.RouterGroup, s *server) *gin.RouterGroup {
	view := middlewares.RequireCapability(types.CAP_VIEW_RESERVATIONS)
	update := middlewares.RequireCapability(types.CAP_UPDATE_RESERVATIONS)
	g.
		GET("/reservations", view, func(ctx *gin.Context) {
			var q types.ReservationQueryFilters
			if err := ctx.ShouldBindQuery(&q); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			page, err := s.reservations.ListReservations(ctx.Request.Context(), middlewares.ActorFrom(ctx), q)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", page)
		}).
		GET("/reservations/:id", view, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			r, err := s.reservations.GetReservation(ctx.Request.Context(), middlewares.ActorFrom(ctx), params.ID)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", r)
		}).
		POST("/reservations", middlewares.RequireCapability(types.CAP_CREATE_RESERVATIONS), func(ctx *gin.Context) {
			var body types.CreateReservationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			r, err := s.reservations.CreateReservation(ctx.Request.Context(), middlewares.ActorFrom(ctx), &body)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusCreated, "reservation created", r)
		}).
		PUT("/reservations/:id", update, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			var body types.UpdateReservationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			r, err := s.reservations.UpdateReservation(ctx.Request.Context(), middlewares.ActorFrom(ctx), params.ID, &body)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "reservation updated", r)
		}).
		POST("/reservations/:id/finish", update, transitionHandler("reservation finished", s.reservations.FinishReservation)).
		POST("/reservations/:id/cancel", update, transitionHandler("reservation cancelled", s.reservations.CancelReservation))
	return g
}
