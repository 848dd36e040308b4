package env

import (
	"os"

	"github.com/joho/godotenv"
)

type convertible interface {
	~[]byte | ~string
}

var (
	APP_PORT      string
	DB_CONN       string
	HS256_SECRET  []byte
	NSQD_TCP_ADDR string
	POST_TOPIC    string
)

func initEnv[T convertible](dst *T, key, fallback string) {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	*dst = T(v)
}

func init() {
	// a missing .env is fine, the environment may be set directly
	godotenv.Load()
	initEnv(&APP_PORT, "APP_PORT", "8080")
	initEnv(&DB_CONN, "DB_CONN", "")
	initEnv(&HS256_SECRET, "HS256_SECRET", "insecure-dev-secret")
	initEnv(&NSQD_TCP_ADDR, "NSQD_TCP_ADDR", "")
	initEnv(&POST_TOPIC, "POST_TOPIC", "microposts")
}
