package main

import (
	"context"

	"github.com/rs/zerolog/log"

	enginex "github.com/zaidtausif56/smart-calling-agent/agent/engine"
	llmx "github.com/zaidtausif56/smart-calling-agent/agent/llm"
	orchestratorx "github.com/zaidtausif56/smart-calling-agent/agent/orchestrator"
	promptx "github.com/zaidtausif56/smart-calling-agent/agent/prompt"
	statex "github.com/zaidtausif56/smart-calling-agent/agent/state"
	toolx "github.com/zaidtausif56/smart-calling-agent/agent/tool"
	configx "github.com/zaidtausif56/smart-calling-agent/pkg/config"
	_ "github.com/zaidtausif56/smart-calling-agent/pkg/logger/autoload"
	openrouterx "github.com/zaidtausif56/smart-calling-agent/pkg/openrouter"
	speechx "github.com/zaidtausif56/smart-calling-agent/pkg/speech"
	telephonyx "github.com/zaidtausif56/smart-calling-agent/pkg/telephony"
	serverx "github.com/zaidtausif56/smart-calling-agent/server"
	storex "github.com/zaidtausif56/smart-calling-agent/store"
)

type AppConfig struct {
	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`
	ProductCSV  string `envconfig:"PRODUCT_CSV" default:"Products.csv"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")

	db, err := storex.Open(ctx, appCfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := storex.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}
	if err := storex.SeedCatalog(ctx, db, appCfg.ProductCSV); err != nil {
		log.Fatal().Err(err).Msg("catalog seeding failed")
	}

	catalog := storex.NewCatalog(db)
	orders := storex.NewOrderStore(db)
	otp := storex.NewOTPStore(db)

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	agent, err := llmx.New(ctx, openRouterCfg, promptx.Sales())
	if err != nil {
		log.Fatal().Err(err).Msg("dialogue agent setup failed")
	}

	gateway := toolx.NewInventoryGateway(catalog)
	engine := enginex.New(agent, gateway)

	sessions := statex.NewStore()
	orch, err := orchestratorx.New(sessions, agent, engine, catalog, orders, orchestratorx.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator setup failed")
	}

	twilio := telephonyx.MustNew(*configx.MustNew[telephonyx.Config]("TWILIO"))

	deepgram := speechx.MustNewDeepgram(*configx.MustNew[speechx.DeepgramConfig]("DEEPGRAM"))
	var synth speechx.Synthesizer = deepgram
	if client := openrouterx.NewClient(*openRouterCfg); client != nil {
		openaiSynth, err := speechx.NewOpenAI(client, *configx.MustNew[speechx.OpenAIConfig]("TTS"))
		if err != nil {
			log.Fatal().Err(err).Msg("fallback synthesizer setup failed")
		}
		synth = speechx.NewFallback(deepgram, openaiSynth)
	}

	serverCfg := configx.MustNew[serverx.Config]("SERVER")
	srv, err := serverx.New(*serverCfg, orch, twilio, synth, orders, otp)
	if err != nil {
		log.Fatal().Err(err).Msg("server setup failed")
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("smart calling agent listening")
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
