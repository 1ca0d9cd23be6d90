package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ahorra/internal/config"
	"ahorra/internal/handlers"
	"ahorra/internal/logging"
	"ahorra/internal/money"
	"ahorra/internal/services"
	"ahorra/internal/store"
	"ahorra/internal/websocket"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	openingBalance, err := money.ParseMinor(cfg.OpeningBalance)
	if err != nil || openingBalance < 0 {
		logger.WithField("opening_balance", cfg.OpeningBalance).Fatal("invalid opening balance")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := store.Open(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.WithError(err).WithField("driver", cfg.StorageDriver).Fatal("failed to open storage")
	}
	defer st.Close()

	hub := websocket.NewHub()
	sessions := services.NewSessionService(st.Users(), services.NewSessionStore(st.Meta()), logger)
	mailbox := services.NewMailbox(st.Mail(), hub, cfg.MailboxLimit, logger)

	handler := handlers.New(cfg, logger, handlers.Deps{
		Sessions:  sessions,
		Users:     services.NewUserService(st, mailbox, openingBalance, logger),
		Accounts:  services.NewAccountService(st.Transactions()),
		Transfers: services.NewTransferService(st, sessions, mailbox, hub, logger),
		Budgets:   services.NewBudgetService(st.Budgets()),
		Mailbox:   mailbox,
		Resets:    services.NewPasswordResetService(st, mailbox, cfg.ResetTokenTTL, logger),
		Health:    st,
	}, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": server.Addr, "driver": cfg.StorageDriver}).Info("ahorra API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
}
