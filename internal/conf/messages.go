package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/elguiriashing/amsterdam/internal/biz/usecase"
)

// MessagesConfig contains the user-facing texts loaded from YAML
type MessagesConfig struct {
	Help             string `yaml:"help"`
	WipeDone         string `yaml:"wipe_done"`
	Status           string `yaml:"status"`
	Password         string `yaml:"password"`
	PasswordMissing  string `yaml:"password_missing"`
	PasswordDMFailed string `yaml:"password_dm_failed"`
	ScheduleUpdated  string `yaml:"schedule_updated"`
	ScheduleUsage    string `yaml:"schedule_usage"`
}

// LoadMessagesConfig loads texts from a YAML file, falling back to the defaults
func LoadMessagesConfig(configPath string) (*MessagesConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/messages.yaml",
			"/etc/wipebot/messages.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "messages.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		if b, err := os.ReadFile(p); err == nil {
			data = b
			loadedPath = p
			break
		}
	}

	if data == nil {
		if configPath != "" {
			return DefaultMessagesConfig(), fmt.Errorf("messages file %s not readable", configPath)
		}
		fmt.Println("[Config] No messages.yaml found, using defaults")
		return DefaultMessagesConfig(), nil
	}

	fmt.Printf("[Config] Loading messages from: %s\n", loadedPath)

	var config MessagesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return DefaultMessagesConfig(), fmt.Errorf("failed to parse %s: %w", loadedPath, err)
	}
	config.fillDefaults()

	return &config, nil
}

func (c *MessagesConfig) fillDefaults() {
	defaults := DefaultMessagesConfig()

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&c.Help, defaults.Help)
	fill(&c.WipeDone, defaults.WipeDone)
	fill(&c.Status, defaults.Status)
	fill(&c.Password, defaults.Password)
	fill(&c.PasswordMissing, defaults.PasswordMissing)
	fill(&c.PasswordDMFailed, defaults.PasswordDMFailed)
	fill(&c.ScheduleUpdated, defaults.ScheduleUpdated)
	fill(&c.ScheduleUsage, defaults.ScheduleUsage)
}

// ToTexts converts to the templates used by the engine
func (c *MessagesConfig) ToTexts() usecase.Texts {
	return usecase.Texts{
		Help:             c.Help,
		WipeDone:         c.WipeDone,
		Status:           c.Status,
		Password:         c.Password,
		PasswordMissing:  c.PasswordMissing,
		PasswordDMFailed: c.PasswordDMFailed,
		ScheduleUpdated:  c.ScheduleUpdated,
		ScheduleUsage:    c.ScheduleUsage,
	}
}

// DefaultMessagesConfig returns the built-in texts (HTML parse mode)
func DefaultMessagesConfig() *MessagesConfig {
	return &MessagesConfig{
		Help: `<b>Commands</b>
/wipe - delete all tracked messages except the pinned one
/password - receive the group password in a private message
/status - uptime, tracked messages and auto-wipe schedule
/setautowipe &lt;hours 1-168&gt; &lt;HH:MM&gt; - change the auto-wipe schedule
/help - this list`,
		WipeDone: `🧹 Chat wiped: {{deleted}} messages deleted, {{failed}} failed.`,
		Status: `<b>Status</b>
Uptime: {{uptime}}
Tracked messages: {{tracked}}
Auto-wipe: {{schedule}}
Next wipe: {{next_run}}
Last wipe: {{last_wipe}}`,
		Password:         `🔑 Password: <code>{{password}}</code>` + "\n" + `This message disappears in one minute.`,
		PasswordMissing:  `No password is configured.`,
		PasswordDMFailed: `I could not message you privately. Open a chat with me, press Start, then try /password again.`,
		ScheduleUpdated:  `✅ Auto-wipe set: {{schedule}}. Next wipe: {{next_run}}.`,
		ScheduleUsage:    `Usage: /setautowipe &lt;hours 1-168&gt; &lt;HH:MM&gt;` + "\n" + `Example: /setautowipe 24 03:00 ({{error}})`,
	}
}
