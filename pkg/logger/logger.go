package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log  *logrus.Logger
	once sync.Once
)

// Init configura el logger global. En producción se emite JSON para que el
// colector de logs lo parsee; en desarrollo texto plano con timestamp.
func Init(appEnv string) *logrus.Logger {
	once.Do(func() {
		log = logrus.New()
		log.SetOutput(os.Stdout)
		if appEnv == "production" {
			log.SetFormatter(&logrus.JSONFormatter{})
			log.SetLevel(logrus.InfoLevel)
		} else {
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			log.SetLevel(logrus.DebugLevel)
		}
	})
	return log
}

// Log devuelve el logger global (inicializa con valores por defecto si hace falta).
func Log() *logrus.Logger {
	if log == nil {
		return Init(os.Getenv("APP_ENV"))
	}
	return log
}
