package main

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"gopkg.in/mgo.v2"

	"github.com/Justine11289/Precise-HBR/assessments"
	"github.com/Justine11289/Precise-HBR/config"
	"github.com/Justine11289/Precise-HBR/server"
	"github.com/Justine11289/Precise-HBR/tradeoff"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("loading settings")
	}
	log := newLogger(settings)

	ref, err := config.LoadReference(settings.ReferencePath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading reference configuration")
	}
	model, err := tradeoff.LoadModel(settings.ModelPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading tradeoff model")
	}

	session, err := mgo.Dial(settings.MongoURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", settings.MongoURL).Msg("connecting to mongodb")
	}
	defer session.Close()
	db := session.DB(settings.DatabaseName)

	svc := server.NewService(db, tradeoff.NewCalculator(model, ref, log), log)
	svc.RegisterPlugin(assessments.NewPreciseHBRPlugin(ref, log))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	server.RegisterRoutes(e, svc, ref, settings.BasisURL, log)

	log.Info().Str("addr", settings.ServerAddr).Msg("risk service listening")
	if err := e.Start(settings.ServerAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(settings *config.Settings) zerolog.Logger {
	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out = os.Stderr
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if settings.PrettyLogs {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out})
	}
	return logger
}
