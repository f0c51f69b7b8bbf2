package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Storage struct {
		// postgres or memory
		Driver string `env:"STORAGE_DRIVER" env-default:"postgres"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
		// MaxConns of 0 keeps the pgxpool default
		MaxConns        int32         `env:"POSTGRES_MAX_CONNS" env-default:"0"`
		MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE" env-default:"5m"`
	}
	Telegram struct {
		User     int64  `env:"TELEGRAM_USER"`
		BotToken string `env:"TELEGRAM_TOKEN"`
		Channel  string `env:"TELEGRAM_CHANNEL"`
	}
	Groq struct {
		Endpoint string        `env:"GROQ_ENDPOINT" env-default:"https://api.groq.com/openai/v1/chat/completions"`
		Model    string        `env:"GROQ_MODEL" env-default:"mixtral-8x7b-32768"`
		Keys     []string      `env:"GROQ_API_KEYS" env-separator:","`
		Timeout  time.Duration `env:"GROQ_TIMEOUT" env-default:"60s"`
	}
	Sources struct {
		RSSFeeds        []string `env:"RSS_FEEDS" env-separator:"," env-default:"https://feeds.feedburner.com/oreilly/radar,https://techcrunch.com/feed/,https://arstechnica.com/rss/,https://www.theverge.com/rss/index.xml,https://feeds.macrumors.com/MacRumors-All"`
		ItemsPerFeed    int      `env:"RSS_ITEMS_PER_FEED" env-default:"10"`
		FeedWorkers     int      `env:"RSS_WORKERS" env-default:"4"`
		NewsAPIURL      string   `env:"NEWS_API_URL" env-default:"https://newsapi.org"`
		NewsAPIKey      string   `env:"NEWS_API_KEY"`
		NewsAPIQuery    string   `env:"NEWS_API_QUERY" env-default:"technology OR AI OR software OR programming"`
		NewsAPIPageSize int      `env:"NEWS_API_PAGE_SIZE" env-default:"20"`
		HackerNewsURL   string   `env:"HACKER_NEWS_URL" env-default:"https://hacker-news.firebaseio.com/v0"`
		HackerNewsTop   int      `env:"HACKER_NEWS_TOP" env-default:"10"`
	}
	Schedule struct {
		Timezone      string        `env:"SCHEDULE_TIMEZONE" env-default:"UTC"`
		Aggregation   time.Duration `env:"SCHEDULE_AGGREGATION" env-default:"15m"`
		QueueDrain    time.Duration `env:"SCHEDULE_QUEUE_DRAIN" env-default:"30s"`
		Engagement    time.Duration `env:"SCHEDULE_ENGAGEMENT" env-default:"2m"`
		ReplySweep    time.Duration `env:"SCHEDULE_REPLY_SWEEP" env-default:"5m"`
		AutoSchedule  bool          `env:"SCHEDULE_AUTO" env-default:"true"`
		PostDelay     time.Duration `env:"SCHEDULE_POST_DELAY" env-default:"0s"`
		Platforms     []string      `env:"SCHEDULE_PLATFORMS" env-separator:"," env-default:"twitter,telegram,facebook"`
		JobTimeoutCap time.Duration `env:"SCHEDULE_JOB_TIMEOUT" env-default:"30m"`
	}
	Queue struct {
		Workers     int `env:"QUEUE_WORKERS" env-default:"1"`
		MaxRequeues int `env:"QUEUE_MAX_REQUEUES" env-default:"3"`
	}
	Engagement struct {
		LikesPerCycle    int           `env:"ENGAGEMENT_LIKES_PER_CYCLE" env-default:"3"`
		RetweetsPerCycle int           `env:"ENGAGEMENT_RETWEETS_PER_CYCLE" env-default:"2"`
		CommentsPerCycle int           `env:"ENGAGEMENT_COMMENTS_PER_CYCLE" env-default:"1"`
		MinSpacing       time.Duration `env:"ENGAGEMENT_MIN_SPACING" env-default:"10s"`
	}
	Browser struct {
		Headless        bool          `env:"BROWSER_HEADLESS" env-default:"true"`
		UserAgent       string        `env:"BROWSER_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
		Timeout         time.Duration `env:"BROWSER_TIMEOUT" env-default:"30s"`
		FacebookPageURL string        `env:"FACEBOOK_PAGE_URL"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN returns the postgres connection string used by goose and pgx.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}

// UseMemoryStorage reports whether repositories should be kept in process.
func (c *Config) UseMemoryStorage() bool {
	return strings.EqualFold(c.Storage.Driver, "memory")
}
