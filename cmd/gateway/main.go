package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"

	"github.com/zunohq/zuno-gateway/pkg/idmclient"
	"github.com/zunohq/zuno-gateway/pkg/inviteflow"
	inviteapi "github.com/zunohq/zuno-gateway/pkg/inviteflow/api"
	"github.com/zunohq/zuno-gateway/pkg/ratelimit"
	"github.com/zunohq/zuno-gateway/pkg/session"
	"github.com/zunohq/zuno-gateway/pkg/workspace"
)

type UpstreamConfig struct {
	BaseURL string `env:"IDM_API_URL" env-default:"http://localhost:8000"`
}

type CookieConfig struct {
	Name   string `env:"COOKIE_NAME" env-default:"zuno_auth_token"`
	Secure bool   `env:"COOKIE_SECURE" env-default:"false"`
	MaxAge int    `env:"COOKIE_MAX_AGE" env-default:"1800"`
}

type JwtConfig struct {
	JwtSecret string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
}

type RateLimitConfig struct {
	Capacity  int     `env:"RATE_LIMIT_CAPACITY" env-default:"20"`
	PerMinute float64 `env:"RATE_LIMIT_PER_MINUTE" env-default:"30"`
}

type InviteConfig struct {
	DataDir         string `env:"INVITE_DATA_DIR" env-default:".data"`
	RedirectDelayMs int    `env:"INVITE_REDIRECT_DELAY_MS" env-default:"2000"`
}

type Config struct {
	UpstreamConfig UpstreamConfig
	CookieConfig   CookieConfig
	JwtConfig      JwtConfig
	InviteConfig   InviteConfig
	RateLimit      RateLimitConfig
	AppConfig      app.AppConfig
}

func main() {

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultWithoutRoutes()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	client := idmclient.New(config.UpstreamConfig.BaseURL)

	intents, err := inviteflow.NewFileIntentStore(config.InviteConfig.DataDir)
	if err != nil {
		slog.Error("Failed creating intent store", "dir", config.InviteConfig.DataDir, "err", err)
		os.Exit(-1)
	}

	cookies := session.NewCookieSetter(config.CookieConfig.Name, config.CookieConfig.Secure)
	cookies.MaxAge = config.CookieConfig.MaxAge

	resume := inviteflow.NewResumeFlow(client, intents)
	sessionHandle := session.NewHandle(client, resume, cookies)

	inviteHandle := inviteapi.NewHandle(
		inviteapi.WithClient(client),
		inviteapi.WithIntentStore(intents),
		inviteapi.WithCookieSetter(cookies),
		inviteapi.WithCookieName(config.CookieConfig.Name),
		inviteapi.WithRedirectDelay(time.Duration(config.InviteConfig.RedirectDelayMs)*time.Millisecond),
	)

	workspaceHandle := workspace.NewHandle(client, config.CookieConfig.Name)

	tokenAuth := jwtauth.New("HS256", []byte(config.JwtConfig.JwtSecret), nil)

	server.R.Route("/api", func(r chi.Router) {
		// Invite tokens and credentials are guessable over enough attempts
		r.Group(func(r chi.Router) {
			r.Use(ratelimit.PerClient(config.RateLimit.Capacity, config.RateLimit.PerMinute))
			sessionHandle.RegisterRoutes(r)
			inviteHandle.RegisterRoutes(r)
		})

		// Workspace and subscription proxies require a verified session
		r.Group(func(r chi.Router) {
			r.Use(session.Verifier(tokenAuth, config.CookieConfig.Name))
			r.Use(session.RequireSession)
			workspaceHandle.RegisterRoutes(r)
		})
	})

	server.Run()
}
