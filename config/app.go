package config

type App struct {
	Port             string `env:"APP_PORT" default:"8080"`
	DatabaseURL      string `env:"DATABASE_URL,required"`
	BearerToken      string `env:"API_BEARER_TOKEN,required"`
	BorrowRatePerMin int    `env:"BORROW_RATE_LIMIT" default:"100"`
	Env              string `env:"APP_ENV" default:"dev"`
}
