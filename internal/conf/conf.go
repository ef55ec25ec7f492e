package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/service"
)

// Config represents application configuration
type Config struct {
	// Bot configuration
	Bot BotConfig

	// Default auto-wipe schedule
	Schedule ScheduleConfig

	// Engine timing and sizing
	Engine EngineValues

	// Wipe journal configuration
	Journal JournalConfig

	// Local API configuration
	API APIConfig

	// Messages configuration (loaded from YAML)
	Messages *MessagesConfig

	// Debug mode
	Debug bool
}

// BotConfig contains Bot API configuration
type BotConfig struct {
	Token          string
	ChatID         int64
	Username       string // command suffix; fetched via getMe when empty
	Secret         string
	APIBaseURL     string
	RequestTimeout time.Duration
}

// ScheduleConfig contains the default auto-wipe schedule
type ScheduleConfig struct {
	Hours int
	Time  string
}

// EngineValues contains engine timing and sizing values
type EngineValues struct {
	PollInterval   time.Duration
	PollBatchSize  int
	ResumeGrace    time.Duration
	IndexCapacity  int
	CommandCleanup time.Duration
	SecretTTL      time.Duration
	ReplyTTL       time.Duration
	NotifyTTL      time.Duration
}

// JournalConfig contains wipe journal configuration
type JournalConfig struct {
	DBPath   string
	Disabled bool
}

// APIConfig contains local API configuration
type APIConfig struct {
	Port int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Journal DB path
	journalDBPath := os.Getenv("JOURNAL_DB_PATH")
	if journalDBPath == "" {
		homeDir, _ := os.UserHomeDir()
		journalDBPath = filepath.Join(homeDir, ".wipebot", "journal.db")
	}

	scheduleTime := os.Getenv("AUTOWIPE_TIME")
	if scheduleTime == "" {
		scheduleTime = domain.DefaultSchedule.TimeOfDay()
	}

	messages, err := LoadMessagesConfig(os.Getenv("MESSAGES_CONFIG_PATH"))
	if err != nil {
		fmt.Printf("[Config] %v, using defaults\n", err)
	}

	chatID, _ := strconv.ParseInt(os.Getenv("CHAT_ID"), 10, 64)

	return &Config{
		Bot: BotConfig{
			Token:          os.Getenv("BOT_TOKEN"),
			ChatID:         chatID,
			Username:       os.Getenv("BOT_USERNAME"),
			Secret:         os.Getenv("SECRET_PASSWORD"),
			APIBaseURL:     os.Getenv("API_BASE_URL"),
			RequestTimeout: envSeconds("REQUEST_TIMEOUT_SEC", 15),
		},
		Schedule: ScheduleConfig{
			Hours: envInt("AUTOWIPE_HOURS", domain.DefaultSchedule.IntervalHours),
			Time:  scheduleTime,
		},
		Engine: EngineValues{
			PollInterval:   envMillis("POLL_INTERVAL_MS", 3000),
			PollBatchSize:  envInt("POLL_BATCH_SIZE", 100),
			ResumeGrace:    envMillis("RESUME_GRACE_MS", 1000),
			IndexCapacity:  envInt("INDEX_CAPACITY", domain.DefaultIndexCapacity),
			CommandCleanup: envMillis("COMMAND_CLEANUP_MS", 2000),
			SecretTTL:      envSeconds("SECRET_TTL_SEC", 60),
			ReplyTTL:       envSeconds("REPLY_TTL_SEC", 30),
			NotifyTTL:      time.Duration(envInt("NOTIFY_TTL_HOURS", 48)) * time.Hour,
		},
		Journal: JournalConfig{
			DBPath:   journalDBPath,
			Disabled: os.Getenv("JOURNAL_DISABLED") == "true",
		},
		API: APIConfig{
			Port: envInt("API_PORT", 9876),
		},
		Messages: messages,
		Debug:    os.Getenv("DEBUG") == "true",
	}
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envMillis(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Millisecond
}

func envSeconds(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Second
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return &ConfigError{Field: "BOT_TOKEN", Message: "required"}
	}
	if c.Bot.ChatID == 0 {
		return &ConfigError{Field: "CHAT_ID", Message: "required (numeric chat id)"}
	}
	if _, err := c.DefaultSchedule(); err != nil {
		return &ConfigError{Field: "AUTOWIPE_HOURS/AUTOWIPE_TIME", Message: err.Error()}
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return &ConfigError{Field: "API_PORT", Message: "must be a valid TCP port"}
	}
	return nil
}

// DefaultSchedule returns the configured startup schedule
func (c *Config) DefaultSchedule() (domain.WipeSchedule, error) {
	return domain.NewWipeSchedule(c.Schedule.Hours, c.Schedule.Time)
}

// JournalPath returns the journal database path, empty when the journal is disabled
func (c *Config) JournalPath() string {
	if c.Journal.Disabled {
		return ""
	}
	return c.Journal.DBPath
}

// ToEngineConfig converts to engine configuration
func (c *Config) ToEngineConfig() service.EngineConfig {
	messages := c.Messages
	if messages == nil {
		messages = DefaultMessagesConfig()
	}

	return service.EngineConfig{
		ChatID:         c.Bot.ChatID,
		BotUsername:    c.Bot.Username,
		Secret:         c.Bot.Secret,
		PollInterval:   c.Engine.PollInterval,
		PollBatchSize:  c.Engine.PollBatchSize,
		ResumeGrace:    c.Engine.ResumeGrace,
		IndexCapacity:  c.Engine.IndexCapacity,
		CommandCleanup: c.Engine.CommandCleanup,
		SecretTTL:      c.Engine.SecretTTL,
		ReplyTTL:       c.Engine.ReplyTTL,
		NotifyTTL:      c.Engine.NotifyTTL,
		Texts:          messages.ToTexts(),
		Debug:          c.Debug,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
