package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
	"github.com/joho/godotenv"
	"github.com/khanghh/clubhub/internal/audit"
	"github.com/khanghh/clubhub/internal/auth"
	"github.com/khanghh/clubhub/internal/common"
	"github.com/khanghh/clubhub/internal/config"
	"github.com/khanghh/clubhub/internal/handlers/api"
	"github.com/khanghh/clubhub/internal/mail"
	"github.com/khanghh/clubhub/internal/middlewares"
	"github.com/khanghh/clubhub/internal/middlewares/captcha"
	"github.com/khanghh/clubhub/internal/render"
	"github.com/khanghh/clubhub/internal/settings"
	"github.com/khanghh/clubhub/internal/store"
	"github.com/khanghh/clubhub/internal/users"
	"github.com/khanghh/clubhub/model"
	"github.com/khanghh/clubhub/params"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	envFileFlag = &cli.StringFlag{
		Name:  "env-file",
		Usage: "Optional dotenv file loaded before the config",
		Value: ".env",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
	emailFlag = &cli.StringFlag{
		Name:     "email",
		Usage:    "Email of a verified user",
		Required: true,
	}
	roleFlag = &cli.StringFlag{
		Name:  "role",
		Usage: "Role to assign (USER or ADMIN)",
		Value: string(model.RoleAdmin),
	}
	auditEmailFlag = &cli.StringFlag{
		Name:     "email",
		Usage:    "Email to list audit events for",
		Required: true,
	}
	limitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of events",
		Value: 20,
	}
	lengthFlag = &cli.IntFlag{
		Name:  "length",
		Usage: "Secret length",
		Value: 32,
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "clubhub - club management backend"
	app.Flags = []cli.Flag{
		configFileFlag,
		envFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name:  "version",
			Usage: "Print version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
		{
			Name:   "migrate",
			Usage:  "Create or update database tables",
			Action: migrate,
		},
		{
			Name:   "sweep",
			Usage:  "Delete expired unverified users once",
			Action: sweep,
		},
		{
			Name:   "promote",
			Usage:  "Change the role of a verified user",
			Flags:  []cli.Flag{emailFlag, roleFlag},
			Action: promote,
		},
		{
			Name:   "audit",
			Usage:  "List recent login and verification events of an email",
			Flags:  []cli.Flag{auditEmailFlag, limitFlag},
			Action: listAuditEvents,
		},
		{
			Name:   "gen-secret",
			Usage:  "Generate values for masterKey, auth.jwtSecret and auth.adminSecret",
			Flags:  []cli.Flag{lengthFlag},
			Action: genSecret,
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustLoadConfig(ctx *cli.Context) *config.Config {
	envFile := ctx.String(envFileFlag.Name)
	if err := godotenv.Load(envFile); err != nil && ctx.IsSet(envFileFlag.Name) {
		slog.Error("Could not load env file.", "file", envFile, "error", err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		os.Exit(1)
	}
	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))
	return cfg
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if len(dbConfig.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(dbConfig.Replicas))
		for _, dsn := range dbConfig.Replicas {
			replicas = append(replicas, mysql.Open(dsn))
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})
		if dbConfig.MaxIdleConns > 0 {
			resolver.SetMaxIdleConns(dbConfig.MaxIdleConns)
		}
		if dbConfig.MaxOpenConns > 0 {
			resolver.SetMaxOpenConns(dbConfig.MaxOpenConns)
		}
		if dbConfig.ConnMaxIdleTime > 0 {
			resolver.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)
		}
		if dbConfig.ConnMaxLifetime > 0 {
			resolver.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
		}
		if err := db.Use(resolver); err != nil {
			slog.Error("Failed to register read replicas", "error", err)
			os.Exit(1)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to get database handle", "error", err)
		os.Exit(1)
	}
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	}

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}
	return db
}

func mustInitMailSender(cfg *config.Config) mail.MailSender {
	switch cfg.Mail.Backend {
	case "smtp":
		sender, err := mail.NewSMTPMailSender(cfg.Mail.SMTP, cfg.Mail.From)
		if err != nil {
			slog.Error("Failed to initialize SMTP mail sender", "error", err)
			os.Exit(1)
		}
		return sender
	case "log":
		return mail.NewLogMailSender(slog.Default())
	}
	slog.Error("Unsupported mail sender backend", "backend", cfg.Mail.Backend)
	os.Exit(1)
	return nil
}

func mustInitCaptchaVerifier(captchaCfg config.CaptchaConfig) captcha.CaptchaVerifier {
	switch captchaCfg.Provider {
	case "turnstile":
		return captcha.NewTurnstileVerifier(captchaCfg.Turnstile.SecretKey)
	case "", "none":
		return captcha.NewNullVerifier()
	}
	slog.Error("Unsupported captcha provider", "provider", captchaCfg.Provider)
	os.Exit(1)
	return nil
}

func mustInitRedisStorage(redisCfg config.RedisConfig) *redis.Storage {
	return redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
}

func captchaError(err error) error {
	slog.Debug("Captcha rejected", "error", err)
	return middlewares.NewAPIError(fiber.StatusBadRequest, "INVALID_CAPTCHA", "Captcha verification failed")
}

func setupAPIRoutes(
	router fiber.Router,
	cfg *config.Config,
	tokens *auth.TokenIssuer,
	userService *users.UserService,
	settingsService *settings.SettingsService,
	captchaVerifier captcha.CaptchaVerifier,
	rateLimiter *middlewares.RateLimiter,
	ping func(ctx context.Context) error) {

	// handlers
	var (
		authHandler   = api.NewAuthHandler(userService)
		configHandler = api.NewConfigHandler(settingsService)
		healthHandler = api.NewHealthHandler(ping)
	)

	// middlewares
	var (
		rateLimit     = rateLimiter.Handler()
		requireAuth   = middlewares.Authenticate(tokens)
		requireMember = middlewares.RequireRole(model.RoleUser, model.RoleAdmin)
		requireAdmin  = middlewares.RequireAdmin(tokens, cfg.Auth.AdminSecret)
		verifyCaptcha = captcha.Require(captchaVerifier, captchaError)
	)

	// routes
	router.Get("/api/health", healthHandler.GetHealth)
	router.Post("/auth/register", rateLimit, verifyCaptcha, authHandler.PostRegister)
	router.Post("/auth/resend-code", rateLimit, authHandler.PostResendCode)
	router.Post("/auth/verify", rateLimit, authHandler.PostVerify)
	router.Post("/auth/login", rateLimit, authHandler.PostLogin)
	router.Get("/auth/me", requireAuth, requireMember, authHandler.GetMe)
	router.Get("/api/config", configHandler.GetConfig)
	router.Post("/api/config", requireAdmin, configHandler.PostConfig)
	router.Patch("/api/config", requireAdmin, configHandler.PatchConfig)
	router.Delete("/api/config", requireAdmin, configHandler.DeleteConfig)
}

func run(ctx *cli.Context) error {
	cfg := mustLoadConfig(ctx)

	globalVars := fiber.Map{
		"siteName": cfg.SiteName,
		"baseURL":  cfg.BaseURL,
	}
	if err := render.Initialize(globalVars, cfg.TemplateDir); err != nil {
		slog.Error("Failed to initialize templates", "error", err)
		return err
	}
	mailSender := mustInitMailSender(cfg)
	db := mustInitDatabase(cfg.MySQL)
	captchaVerifier := mustInitCaptchaVerifier(cfg.Captcha)

	var (
		pendingStorage store.Storage
		redisStorage   *redis.Storage
	)
	if cfg.Auth.PendingStore == "redis" {
		redisStorage = mustInitRedisStorage(cfg.Redis)
		defer redisStorage.Close()
		pendingStorage = store.NewRedisStorage(redisStorage.Conn())
	} else {
		memStorage := store.NewMemoryStorage(params.MemoryStoreGCInterval)
		defer memStorage.Close()
		pendingStorage = memStorage
	}

	// repositories
	var (
		userRepo     = users.NewUserRepository(db)
		settingsRepo = settings.NewRepository(db)
		pendingStore = store.New[users.PendingRegistration](pendingStorage, params.RegistrationKeyPrefix)
		auditRepo    = audit.NewAuditEventRepository(db)
	)
	audit.Initialize(auditRepo)

	// services
	var (
		tokens      = auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.SiteName, cfg.Auth.TokenExpiry)
		userService = users.NewUserService(userRepo, pendingStore, mail.NewCodeMailer(mailSender), tokens, users.Options{
			MasterKey:      cfg.MasterKey,
			PendingTTL:     cfg.Auth.PendingTTL,
			ResendCooldown: cfg.Auth.ResendCooldown,
		})
		settingsService = settings.NewSettingsService(settingsRepo)
		sweeper         = users.NewSweeper(userRepo, slog.Default(), cfg.Auth.SweepInterval)
		rateLimiter     = middlewares.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	)
	defer rateLimiter.Stop()

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + captcha.TokenHeader,
	}))

	ping := func(pingCtx context.Context) error {
		if redisStorage != nil {
			return common.Ping(pingCtx, db, redisStorage.Conn())
		}
		return common.Ping(pingCtx, db, nil)
	}

	setupAPIRoutes(
		router,
		cfg,
		tokens,
		userService,
		settingsService,
		captchaVerifier,
		rateLimiter,
		ping,
	)

	sweeper.Start()
	defer sweeper.Stop()

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	if redisStorage != nil {
		go common.StartHealthCheckServer(healthCheckCtx, done, redisStorage.Conn(), db)
	} else {
		go common.StartHealthCheckServer(healthCheckCtx, done, nil, db)
	}
	defer func() {
		term()
		<-done
	}()
	return router.Listen(cfg.ListenAddr)
}

func migrate(ctx *cli.Context) error {
	cfg := mustLoadConfig(ctx)
	mustInitDatabase(cfg.MySQL)
	slog.Info("Database migrated")
	return nil
}

func sweep(ctx *cli.Context) error {
	cfg := mustLoadConfig(ctx)
	db := mustInitDatabase(cfg.MySQL)
	sweeper := users.NewSweeper(users.NewUserRepository(db), slog.Default(), cfg.Auth.SweepInterval)
	_, err := sweeper.Sweep(ctx.Context)
	return err
}

func promote(ctx *cli.Context) error {
	cfg := mustLoadConfig(ctx)
	db := mustInitDatabase(cfg.MySQL)
	userService := users.NewUserService(users.NewUserRepository(db), nil, nil, nil, users.Options{})
	if err := userService.Promote(ctx.Context, ctx.String(emailFlag.Name), ctx.String(roleFlag.Name)); err != nil {
		return err
	}
	slog.Info("User role updated", "email", ctx.String(emailFlag.Name), "role", strings.ToUpper(ctx.String(roleFlag.Name)))
	return nil
}

func listAuditEvents(ctx *cli.Context) error {
	cfg := mustLoadConfig(ctx)
	db := mustInitDatabase(cfg.MySQL)
	email, err := users.NormalizeEmail(ctx.String(auditEmailFlag.Name))
	if err != nil {
		return err
	}
	events, err := audit.NewAuditEventRepository(db).ListByEmail(ctx.Context, email, ctx.Int(limitFlag.Name))
	if err != nil {
		return err
	}
	for _, event := range events {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", event.CreatedAt.Format(time.RFC3339), event.EventType, event.IP, event.UserAgent, event.Reason)
	}
	return nil
}

func genSecret(ctx *cli.Context) error {
	if ctx.Int(lengthFlag.Name) < 16 {
		return fmt.Errorf("secret length must be at least 16")
	}
	for _, key := range []string{"masterKey", "auth.jwtSecret", "auth.adminSecret"} {
		secret, err := common.GenerateSecret(ctx.Int(lengthFlag.Name))
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", key, secret)
	}
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
