package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/config"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/notify"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/payment"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/payment/stripepay"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/payment/ziina"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/service"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *sql.DB
	Dispatcher *notify.Dispatcher
	Services   Services
	UserRepo   storage.UserStorage
}

// Services - всё, что нужно роутеру
type Services struct {
	Auth          service.AuthServiceInterface
	Intake        service.IntakeService
	Payments      service.PaymentService
	Orders        service.OrderAdminService
	Products      service.ProductService
	AdminRequests service.AdminRequestService
	Stats         service.StatsService
}

// NewApp создаёт новый экземпляр App: БД, шлюз оплаты, почта и сервисы
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gateway, err := NewGateway(log, cfg.Payment)
	if err != nil {
		db.Close()
		return nil, err
	}

	dispatcher := notify.NewDispatcher(log, NewMailer(log, cfg.Mail), notify.Options{
		Inbox:     cfg.Store.Inbox,
		StoreName: cfg.Store.Name,
		Timeout:   cfg.Mail.SendTimeout,
	})

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(db)
	productRepo := storage.NewProductRepository(db)
	orderRepo := storage.NewOrderRepository(db)
	requestRepo := storage.NewAdminRequestRepository(db)
	statsRepo := storage.NewStatsRepository(db)

	return &App{
		Config:     cfg,
		Logger:     log,
		DB:         db,
		Dispatcher: dispatcher,
		UserRepo:   userRepo,
		Services: Services{
			Auth:          service.NewAuthService(log, userRepo, time.Duration(cfg.JWT.TokenTTL)*time.Minute),
			Intake:        service.NewIntakeService(log, db, productRepo, orderRepo, dispatcher, cfg.Store.Currency),
			Payments:      service.NewPaymentService(log, orderRepo, gateway, dispatcher, cfg.Store.StorefrontURL, cfg.Store.Name),
			Orders:        service.NewOrderAdminService(log, db, orderRepo, productRepo, dispatcher, cfg.Mail.SendTimeout),
			Products:      service.NewProductService(log, productRepo),
			AdminRequests: service.NewAdminRequestService(log, db, userRepo, requestRepo),
			Stats:         service.NewStatsService(log, statsRepo),
		},
	}, nil
}

// NewGateway выбирает шлюз оплаты по payment.provider
func NewGateway(log *slog.Logger, cfg config.PaymentConfig) (payment.Gateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PAYMENT_API_KEY is required for payment provider %q", cfg.Provider)
	}
	switch cfg.Provider {
	case config.PaymentZiina:
		return ziina.New(log, cfg.APIURL, cfg.APIKey, cfg.TestMode, cfg.Timeout), nil
	case config.PaymentStripe:
		return stripepay.New(log, cfg.APIKey), nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
}

// NewMailer выбирает отправку писем по mail.provider
func NewMailer(log *slog.Logger, cfg config.MailConfig) notify.Mailer {
	switch cfg.Provider {
	case config.MailResend:
		return notify.NewResendMailer(cfg.APIKey, cfg.From)
	case config.MailSMTP:
		return notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
			Timeout:  cfg.SendTimeout,
		})
	}
	return notify.NewLogMailer(log)
}

// Close ждёт отправку писем и закрывает БД
func (a *App) Close(ctx context.Context) error {
	if err := a.Dispatcher.Close(ctx); err != nil {
		a.Logger.Error("pending notifications were not sent", slog.Any("error", err))
	}
	return a.DB.Close()
}
