package main

import (
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func guestAuthRoutes(g *gin.RouterGroup, s *server) *gin.RouterGroup {
	guest := g.Group("/auth")
	if s.loginLimiter != nil {
		guest.Use(s.loginLimiter.Middleware())
	}
	guest.
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				utils.JSONError(ctx, utils.BindingError(err))
				return
			}
			res, err := s.auth.Login(ctx, &body)
			if err != nil {
				log.Printf("[AuthLogin] error: %s\n", err.Error())
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "login successful", res)
		})
	return guest
}

func authHandlers(g *gin.RouterGroup, s *server) *gin.RouterGroup {
	g.
		GET("/auth/me", func(ctx *gin.Context) {
			me, err := s.auth.Me(ctx, ctx.GetUint("id"))
			if err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "ok", me)
		}).
		POST("/auth/logout", func(ctx *gin.Context) {
			if err := s.auth.Logout(ctx, ctx.GetString("jti"), ctx.GetTime("exp")); err != nil {
				utils.JSONError(ctx, err)
				return
			}
			utils.JSONOK(ctx, http.StatusOK, "logged out", nil)
		})
	return g
}
