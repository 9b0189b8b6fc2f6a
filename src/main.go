package main

import (
	"bitlibro/src/boot"
	"bitlibro/src/common"
	"bitlibro/src/config"
	"bitlibro/src/controllers"
	"bitlibro/src/lib"
	"bitlibro/src/middlewares"
	"bitlibro/src/repositories"
	"bitlibro/src/utils"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"reflect"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const (
	apiPrefix string = "/api"
)

func parseDateField(v reflect.Value) (time.Time, bool) {
	s, ok := v.Interface().(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// compareDateFields validates the field against the date in the sibling named by the tag param.
func compareDateFields(ok func(date, other time.Time) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		date, valid := parseDateField(fl.Field())
		if !valid {
			return false
		}
		other, valid := parseDateField(fl.Parent().FieldByName(fl.Param()))
		if !valid {
			// the sibling reports its own format error
			return true
		}
		return ok(date, other)
	}
}

var gtdate = compareDateFields(func(date, other time.Time) bool {
	return date.After(other)
})

var gtedate = compareDateFields(func(date, other time.Time) bool {
	return !date.Before(other)
})

var notpastdate validator.Func = func(fl validator.FieldLevel) bool {
	date, valid := parseDateField(fl.Field())
	if !valid {
		return false
	}
	return !date.Before(utils.StartOfDay(time.Now()))
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		v.RegisterValidation("gtdate", gtdate)
		v.RegisterValidation("gtedate", gtedate)
		v.RegisterValidation("notpastdate", notpastdate)
	}
}

// server carries the controllers the route handlers call into.
type server struct {
	auth         *controllers.AuthController
	books        *controllers.BookController
	genres       *controllers.GenreController
	employees    *controllers.UserController
	clients      *controllers.UserController
	reservations *controllers.ReservationController
	authenticate gin.HandlerFunc
	loginLimiter *middlewares.RateLimiter
}

func newServer(db *gorm.DB, files lib.FileStore, events controllers.ReservationEventPublisher) *server {
	return &server{
		auth:         controllers.NewAuthController(db),
		books:        controllers.NewBookController(db, files),
		genres:       controllers.NewGenreController(db),
		employees:    controllers.NewEmployeeController(db),
		clients:      controllers.NewClientController(db),
		reservations: controllers.NewReservationController(repositories.NewReservationStore(db), events),
		authenticate: middlewares.AuthMiddleware,
		loginLimiter: middlewares.NewRateLimiter(config.GetEnvInt("LOGIN_RATE_LIMIT", 10), 5),
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		on, err := strconv.ParseBool(os.Getenv("MAINTENANCE_MODE"))
		if err == nil && on {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": err.Error(), "error": true})
			return
		}
	})
	return g
}

func corsMiddleware() gin.HandlerFunc {
	if os.Getenv("API_ENV") == "local" {
		return cors.Default()
	}
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
	origins := strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",")
	cc.AllowOriginFunc = func(origin string) bool {
		for _, o := range origins {
			if o = strings.TrimSpace(o); o != "" && strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func registerRoutes(router *gin.Engine, s *server) {
	guestAuthRoutes(apiv1Group(router), s)

	authorized := router.Group(apiPrefix)
	authorized.Use(s.authenticate)
	{
		authHandlers(authorized, s)
		bookHandlers(authorized, s)
		genreHandlers(authorized, s)
		employeeHandlers(authorized, s)
		clientHandlers(authorized, s)
		reservationHandlers(authorized, s)
	}
}

func initLogger() {
	cwd, _ := os.Getwd()
	logsDir := path.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		log.Printf("Could not create %s: %s\n", logsDir, err.Error())
		return
	}
	gin.ForceConsoleColor()

	f, err := os.Create(path.Join(logsDir, "api.log"))
	if err == nil {
		gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   path.Join(logsDir, "server.log"),
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()
	if len(config.JWTSecret()) == 0 {
		log.Fatalln("JWT_SECRET is not set")
	}
	if lib.GetRedisClient() == nil {
		log.Fatalln("REDIS_HOST is not set")
	}

	db := boot.InitDb()
	boot.InitScheduler()
	defer boot.StopScheduler()

	registerValidators()

	s := newServer(db, lib.GetFileStore(), common.NewReservationEventPublisher())
	stop := make(chan struct{})
	defer close(stop)
	go s.loginLimiter.Cleanup(time.Minute, 10*time.Minute, stop)

	router := setupRouter()
	router.Use(corsMiddleware())
	router = maintenanceModeMiddleware(router)
	if config.GetEnv("STORAGE_DRIVER", lib.STORAGE_LOCAL) == lib.STORAGE_LOCAL {
		router.Static("/uploads", config.GetEnv("UPLOADS_DIR", "uploads"))
	}
	registerRoutes(router, s)

	srv := &http.Server{
		Addr:    ":" + config.GetEnv("PORT", "9090"),
		Handler: router,
	}
	go func() {
		log.Printf("Listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %s\n", err.Error())
	}
}
