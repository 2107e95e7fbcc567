package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	accounts "github.com/rhoeln/go-accounts"
)

func main() {
	cfg, err := accounts.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := accounts.OpenDB(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := accounts.InitSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	repo := accounts.NewRepositoryManager(db)
	repo.MustValidate()

	hasher := accounts.NewBcryptHasher(cfg.BcryptCost)

	tokens := accounts.NewTokenService(
		[]byte(cfg.AccessTokenSecret),
		[]byte(cfg.RefreshTokenSecret),
		[]byte(cfg.ResetTokenSecret),
		cfg.TokenIssuer,
		accounts.WithAccessTokenTTL(cfg.AccessTokenTTL),
		accounts.WithRefreshTokenTTL(cfg.RefreshTokenTTL),
		accounts.WithResetTokenTTL(cfg.ResetTokenTTL),
	)

	var mailer accounts.Mailer
	if cfg.MailerEnabled() {
		mailer = accounts.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	}

	auther := accounts.NewAuthenticator(repo, tokens, hasher)

	authController := accounts.NewAuthController(
		auther,
		accounts.NewRegisterUserHandler(repo, hasher),
		accounts.NewInitializePasswordResetHandler(repo, tokens, mailer, cfg.ClientURL),
		accounts.NewFinalizePasswordResetHandler(repo, tokens, hasher),
	)
	authController.RefreshTTL = cfg.RefreshTokenTTL

	usersController := accounts.NewUsersController(repo)

	srv := accounts.NewServer(accounts.ServerConfig{
		ClientURL:       cfg.ClientURL,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	}, tokens, authController, usersController)

	go func() {
		if err := srv.Listen(cfg.Addr); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	waitExitSignal()

	if err := srv.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
