package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nethmeehapugoda/back-end-royal-palms/routes"
	"github.com/nethmeehapugoda/back-end-royal-palms/storage"
	"github.com/nethmeehapugoda/back-end-royal-palms/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Routes
	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
	}

	categories := app.Party("/api/categories")
	{
		categories.Get("/", routes.GetCategories)
		categories.Get("/{id:uint}", routes.GetCategoryByID)
		categories.Post("/", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.CreateCategory)
		categories.Put("/{id:uint}", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.UpdateCategory)
		categories.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.DeleteCategory)
	}

	rooms := app.Party("/api/rooms")
	{
		rooms.Get("/", routes.GetRooms)
		rooms.Get("/{id:uint}", routes.GetRoomByID)
		rooms.Post("/", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.CreateRoom)
		rooms.Put("/{id:uint}", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.UpdateRoom)
		rooms.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.DeleteRoom)
	}

	bookings := app.Party("/api/bookings")
	{
		bookings.Get("/availability", routes.CheckRoomAvailability)
		bookings.Post("/", accessTokenVerifierMiddleware, routes.CreateBooking)
		bookings.Get("/", accessTokenVerifierMiddleware, routes.GetBookings)
		bookings.Get("/mine", accessTokenVerifierMiddleware, routes.GetUserBookings)
		bookings.Get("/revenue/monthly", accessTokenVerifierMiddleware, routes.GetMonthlyRevenue)
		bookings.Get("/{id:uint}", accessTokenVerifierMiddleware, routes.GetBookingByID)
		bookings.Put("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateBooking)
		bookings.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteBooking)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000" // fallback for local dev
	}
	addr := ":" + port

	fmt.Println("Starting server on", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
