package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/aslboq/catering-backend/internal/config"
	"github.com/aslboq/catering-backend/internal/database"
	"github.com/aslboq/catering-backend/internal/handler"
	"github.com/aslboq/catering-backend/internal/mailer"
	"github.com/aslboq/catering-backend/internal/otp"
	"github.com/aslboq/catering-backend/internal/queue"
	"github.com/aslboq/catering-backend/internal/repository"
	"github.com/aslboq/catering-backend/internal/router"
	"github.com/aslboq/catering-backend/internal/workflow"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	users := repository.NewUserRepo(db)
	companies := repository.NewCompanyRepo(db)
	tokens := repository.NewTokenRepo(db)
	resets := repository.NewResetTokenRepo(db)
	otps := repository.NewOtpRepo(db)
	customers := repository.NewCustomerRepo(db)
	events := repository.NewEventRepo(db)
	categories := repository.NewCategoryRepo(db)
	ingredients := repository.NewIngredientRepo(db)
	menus := repository.NewMenuRepo(db)
	boqs := repository.NewBOQRepo(db)
	approvals := repository.NewApprovalRepo(db)

	codes := otp.NewEngine(
		otps,
		time.Duration(cfg.OTPTTLMin)*time.Minute,
		time.Duration(cfg.OTPRateWindowMin)*time.Minute,
		cfg.OTPRateMax,
		cfg.BcryptCost,
	)
	flow := workflow.New(boqs, approvals)

	var mail mailer.Mailer
	if cfg.SMTPHost == "" {
		log.Println("SMTP_HOST not set, outgoing mail will be logged only")
		mail = mailer.LogMailer{}
	} else {
		mail, err = mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		})
		if err != nil {
			log.Fatalf("mailer: %v", err)
		}
	}

	// Consume decision events in the background; the consumer reconnects on
	// broker outages and never blocks HTTP traffic.
	go queue.StartDecisionConsumer()

	authH := handler.NewAuthHandler(cfg, users, companies, tokens, resets, codes, mail)
	companyH := handler.NewCompanyHandler(cfg, companies, users, codes, mail)
	customerH := handler.NewCustomerHandler(customers)
	eventH := handler.NewEventHandler(events, customers)
	categoryH := handler.NewCategoryHandler(categories)
	ingredientH := handler.NewIngredientHandler(ingredients, categories)
	menuH := handler.NewMenuHandler(menus, ingredients)
	boqH := handler.NewBOQHandler(boqs, events, customers, flow)
	emailH := handler.NewEmailHandler(mail)

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg, rlCfg, rdb)
	router.RegisterCompany(e, companyH, cfg, rlCfg, rdb)
	router.RegisterCatalog(e, customerH, eventH, categoryH, ingredientH, menuH, cfg.JWTSecret, cacheCfg, rdb)
	router.RegisterBOQ(e, boqH, cfg.JWTSecret)
	router.RegisterEmail(e, emailH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
