// Package server exposes the HTTP surface: Twilio call webhooks, the audio
// endpoint for synthesized speech, and the OTP-authenticated order API.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
	speechx "github.com/zaidtausif56/smart-calling-agent/pkg/speech"
)

type Config struct {
	Addr          string        `split_words:"true" default:":8080"`
	PublicBaseURL string        `envconfig:"PUBLIC_BASE_URL" split_words:"true" required:"true"`
	JWTSecret     string        `envconfig:"JWT_SECRET" split_words:"true" required:"true"`
	JWTTTL        time.Duration `envconfig:"JWT_TTL" split_words:"true" default:"168h"`
	AudioTTL      time.Duration `envconfig:"AUDIO_TTL" split_words:"true" default:"5m"`
	Debug         bool          `split_words:"true" default:"false"`
}

// CallHandler is the part of the orchestrator the webhooks need.
type CallHandler interface {
	StartCall(ctx context.Context, callerID string) (contractx.VoiceAction, error)
	HandleEvent(ctx context.Context, callerID, speech string) (contractx.VoiceAction, error)
	EndCall(callerID string)
}

// Dialer places outbound calls and sends SMS.
type Dialer interface {
	PlaceCall(ctx context.Context, to, webhookURL string) (string, error)
	SendSMS(ctx context.Context, to, text string) error
}

type Server struct {
	cfg    Config
	calls  CallHandler
	dialer Dialer
	synth  speechx.Synthesizer
	orders contractx.OrderStore
	otp    contractx.OTPStore
	audio  *audioCache
}

func New(cfg Config, calls CallHandler, dialer Dialer, synth speechx.Synthesizer, orders contractx.OrderStore, otp contractx.OTPStore) (*Server, error) {
	if calls == nil {
		return nil, errors.New("call handler is required")
	}
	if dialer == nil {
		return nil, errors.New("dialer is required")
	}
	if orders == nil {
		return nil, errors.New("order store is required")
	}
	if otp == nil {
		return nil, errors.New("otp store is required")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("public base url is required")
	}
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 168 * time.Hour
	}

	return &Server{
		cfg:    cfg,
		calls:  calls,
		dialer: dialer,
		synth:  synth,
		orders: orders,
		otp:    otp,
		audio:  newAudioCache(cfg.AudioTTL),
	}, nil
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/make_call", s.handleMakeCall)
	r.POST("/calls/start", s.handleCallStart)
	r.POST("/calls/continue", s.handleCallContinue)
	r.GET("/audio/:token", s.handleAudio)

	api := r.Group("/api")
	api.POST("/auth/send-otp", s.handleSendOTP)
	api.POST("/auth/verify-otp", s.handleVerifyOTP)

	orders := api.Group("/orders", s.authRequired())
	orders.GET("", s.handleListOrders)
	orders.GET("/:id", s.handleGetOrder)
	orders.PATCH("/:id", s.handleUpdateOrderStatus)
	orders.DELETE("/:id", s.handleDeleteOrder)

	return r
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	return s.Router().Run(s.cfg.Addr)
}
