package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maltiti/internal/config"
	"maltiti/internal/handler"
	"maltiti/internal/infra/arkesel"
	"maltiti/internal/infra/db"
	"maltiti/internal/infra/logging"
	"maltiti/internal/infra/mailer"
	"maltiti/internal/infra/paystack"
	infraRepo "maltiti/internal/infra/repository"
	"maltiti/internal/infra/storage"
	"maltiti/internal/infra/token"
	"maltiti/internal/infra/tokenstore"
	"maltiti/internal/middleware"
	"maltiti/internal/notify"
	"maltiti/internal/server"
	"maltiti/internal/usecase"
	auth "maltiti/internal/usecase/auth_usecase"

	gcs "cloud.google.com/go/storage"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("bye")
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	//DB接続
	gormDB, err := db.Connect(cfg.Postgres)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB, log); err != nil {
		return err
	}

	rdb, err := tokenstore.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	gcsClient, err := gcs.NewClient(ctx)
	if err != nil {
		return errors.Wrap(err, "gcs client")
	}
	defer func() { _ = gcsClient.Close() }()
	uploader, err := storage.NewGCSUploader(gcsClient, cfg.Storage)
	if err != nil {
		return err
	}

	gateway, err := paystack.New(paystack.Config{
		BaseURL:     cfg.Paystack.BaseURL,
		SecretKey:   cfg.Paystack.SecretKey,
		Currency:    cfg.Paystack.CurrencyCode,
		Timeout:     cfg.Paystack.Timeout,
		VerifyTries: cfg.Paystack.VerifyTries,
	}, log)
	if err != nil {
		return err
	}
	sms := arkesel.New(arkesel.Config{
		BaseURL: cfg.Arkesel.BaseURL,
		APIKey:  cfg.Arkesel.APIKey,
		Sender:  cfg.Arkesel.Sender,
		Timeout: cfg.Arkesel.Timeout,
	}, log)
	mail := mailer.NewSMTPSender(cfg.SMTP, log)

	rates, err := cfg.Shipping.Rates()
	if err != nil {
		return err
	}

	//Repository（GORM実装）生成
	tx := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	checkoutRepo := infraRepo.NewCheckoutGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	coopRepo := infraRepo.NewCooperativeGormRepository(gormDB)
	memberRepo := infraRepo.NewCooperativeMemberGormRepository(gormDB)
	refreshStore := tokenstore.New(rdb)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	tokens := token.NewManager(cfg.JWT)
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	notices := notify.NewComposer(notify.Admin{
		Name:  cfg.Admin.Name,
		Phone: cfg.Admin.Phone,
		Email: cfg.Admin.Email,
	}, cfg.FrontendURL, idGen, clock)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(tx, hasher, notices, idGen, clock, cfg.APIURL)
	loginUC := auth.NewLoginUsecase(userRepo, refreshStore, verifier, tokens, idGen, clock, cfg.JWT.RefreshTTL)
	sessionUC := auth.NewSessionUsecase(tx, userRepo, refreshStore, tokens, idGen, clock, cfg.JWT.RefreshTTL)
	accountUC := auth.NewAccountUsecase(tx, userRepo, hasher, sms, notices, idGen, clock, cfg.FrontendURL)
	productUC := usecase.NewProductUsecase(productRepo, auditRepo, uploader, idGen, clock)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, idGen)
	checkoutUC := usecase.NewCheckoutUsecase(tx, cartRepo, checkoutRepo, gateway, notices, rates, cfg.FrontendURL, idGen, clock)
	adminOrderUC := usecase.NewAdminOrderUsecase(tx, checkoutRepo, auditRepo, notices, clock)
	coopUC := usecase.NewCooperativeUsecase(coopRepo, memberRepo, uploader, idGen)

	dispatcher := notify.NewDispatcher(tx, sms, mail, notify.DispatcherConfig{
		PollInterval: cfg.Notifications.PollInterval,
		BatchSize:    cfg.Notifications.BatchSize,
		MaxAttempts:  cfg.Notifications.MaxAttempts,
		SendTimeout:  cfg.Notifications.SendTimeout,
		Lease:        cfg.Notifications.Lease,
	}, clock, log.Named("dispatcher"))

	//Handler生成
	e := server.New(cfg.HTTP, log)
	guards := handler.Guards{
		Auth:         middleware.AuthJWT(tokens),
		TokenVersion: middleware.TokenVersionGuard(userRepo),
		Admin:        middleware.AdminRoleGuard(),
	}
	server.RegisterRoutes(e, server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, sessionUC, accountUC, cfg.JWT.RefreshTTL, cfg.IsProd()),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:    handler.NewAdminUserHandler(sessionUC),
		Cooperative:  handler.NewCooperativeHandler(coopUC),
	}, guards)

	//HTTPサーバーと通知ディスパッチャを並行で動かす
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, e, cfg.Addr(), cfg.HTTP.ShutdownTimeout, log)
	})
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	return g.Wait()
}
