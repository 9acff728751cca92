package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Adagu69/calendario-medico-sub000/config"
	"github.com/Adagu69/calendario-medico-sub000/internal/routes"
	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
	"github.com/Adagu69/calendario-medico-sub000/pkg/storage/postgres"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.Init(cfg.AppEnv)
	db := postgres.Connect()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	routes.Init(e, db)

	go func() {
		log.Infof("Servidor escuchando en el puerto %s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("el servidor no pudo arrancar")
		}
	}()

	// Apagado ordenado: se termina de atender lo que está en vuelo.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("error durante el apagado")
	}
	if err := db.Close(); err != nil {
		log.WithError(err).Error("error cerrando la base de datos")
	}
	log.Info("Servidor detenido")
}
