package main

import (
	"bitlibro/src/middlewares"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func employeeHandlers(g *gin.RouterGroup, s *server) *gin.RouterGroup {
	employees := g.Group("/employees")
	employees.Use(middlewares.RequireCapability(types.CAP_MANAGE_EMPLOYEES))
	employees.
		GET("", func(ctx *gin.Context) {
			var q types.UserQueryFilters
			if err := ctx.ShouldBindQuery(&q); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			page, err := s.employees.List(ctx, q)
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
			employee, err := s.employees.Get(ctx, params.ID)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", employee)
		}).
		GET("/:id/reservations", middlewares.RequireCapability(types.CAP_MANAGE_RESERVATIONS), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			var q types.ReservationQueryFilters
			if err := ctx.ShouldBindQuery(&q); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			page, err := s.reservations.ListEmployeeReservations(ctx, params.ID, q)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", page)
		}).
		POST("", func(ctx *gin.Context) {
			var body types.CreateEmployeeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			employee, err := s.employees.CreateEmployee(ctx, &body)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusCreated, "employee created", employee)
		}).
		PUT("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			var body types.UpdateEmployeeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			employee, err := s.employees.UpdateEmployee(ctx, params.ID, &body)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "employee updated", employee)
		}).
		DELETE("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			if err := s.employees.DeleteEmployee(ctx, params.ID); err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "employee deleted", nil)
		})
	return employees
}

func clientHandlers(g *gin.RouterGroup, s *server) *gin.RouterGroup {
	view := middlewares.RequireCapability(types.CAP_VIEW_CLIENTS)
	g.
		GET("/clients", middlewares.RequireCapability(types.CAP_LIST_CLIENTS), func(ctx *gin.Context) {
			var q types.UserQueryFilters
			if err := ctx.ShouldBindQuery(&q); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			page, err := s.clients.List(ctx, q)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", page)
		}).
		GET("/clients/:id", view, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			client, err := s.clients.Get(ctx, params.ID)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", client)
		}).
		GET("/clients/:id/reservations", view, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			var q types.ReservationQueryFilters
			if err := ctx.ShouldBindQuery(&q); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			page, err := s.reservations.ListClientReservations(ctx, params.ID, q)
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", page)
		})
	return g
}
