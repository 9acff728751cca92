package postgres

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/Adagu69/calendario-medico-sub000/config"
	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
)

var (
	db   *sql.DB
	once sync.Once
)

// Connect abre el pool de conexiones a PostgreSQL. Las credenciales vienen
// del .env a través de config.LoadConfig.
func Connect() *sql.DB {
	once.Do(func() {
		cfg := config.LoadConfig()
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

		var err error
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Log().Fatalf("No se pudo abrir la conexión a la base de datos: %v", err)
		}

		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)

		if err = db.Ping(); err != nil {
			logger.Log().Fatalf("No se pudo hacer ping a la base de datos: %v", err)
		}

		logger.Log().Info("Conexión a PostgreSQL establecida.")
	})

	return db
}

// GetDB devuelve el pool ya inicializado.
func GetDB() *sql.DB {
	return db
}
