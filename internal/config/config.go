package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultCopyCommand    = "xclip -selection clipboard"
	DefaultPollInterval   = 100
	DefaultHistoryKeep    = 10
	DefaultTab            = "totp"

	EnvConfig = "PASSRS_CONFIG"
	EnvFile   = "PASSRS_FILE"
	EnvPass   = "PASSRS_PASS"
	EnvCopy   = "PASSRS_COPY"
	EnvLog    = "PASSRS_LOG"
)

var ErrNoDataPath = errors.New("no data file: pass --file, set PASSRS_FILE or HOME")

// Keymap lists the keys bound to each main view action, named the way
// bubbletea prints them ("up", "tab", "G").
type Keymap struct {
	Quit     []string `toml:"quit"`
	Tab      []string `toml:"tab"`
	Up       []string `toml:"up"`
	Down     []string `toml:"down"`
	Top      []string `toml:"top"`
	Bottom   []string `toml:"bottom"`
	MoveUp   []string `toml:"move_up"`
	MoveDown []string `toml:"move_down"`
	Delete   []string `toml:"delete"`
	ShowAll  []string `toml:"show_all"`
	ShowNext []string `toml:"show_next"`
	Copy     []string `toml:"copy"`
	Edit     []string `toml:"edit"`
	New      []string `toml:"new"`
	Password []string `toml:"password"`
	Theme    []string `toml:"theme"`
}

type Config struct {
	DataFile       string `toml:"data_file"`
	CopyCommand    string `toml:"copy_command"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
	LogFile        string `toml:"log_file"`
	History        bool   `toml:"history"`
	HistoryDB      string `toml:"history_db"`
	HistoryKeep    int    `toml:"history_keep"`
	DefaultTab     string `toml:"default_tab"`
	Keys           Keymap `toml:"keys"`
}

// Path returns where the config file lives: PASSRS_CONFIG, then the XDG
// config dir, then ~/.config. An empty result means there is no config file
// and the defaults apply.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "passrs", DefaultConfigFileName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "passrs", DefaultConfigFileName)
	}
	return ""
}

// LoadOrCreate reads the config at path, writing the defaults there first
// when the file does not exist yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = DefaultPollInterval
	}
	if cfg.HistoryKeep <= 0 {
		cfg.HistoryKeep = DefaultHistoryKeep
	}
	if cfg.DefaultTab != "pass" && cfg.DefaultTab != "totp" {
		cfg.DefaultTab = DefaultTab
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return Config{
		CopyCommand:    DefaultCopyCommand,
		PollIntervalMS: DefaultPollInterval,
		HistoryKeep:    DefaultHistoryKeep,
		DefaultTab:     DefaultTab,
		Keys: Keymap{
			Quit:     []string{"esc", "q"},
			Tab:      []string{"tab"},
			Up:       []string{"up", "k"},
			Down:     []string{"down", "j"},
			Top:      []string{"home", "g"},
			Bottom:   []string{"end", "G"},
			MoveUp:   []string{"K"},
			MoveDown: []string{"J"},
			Delete:   []string{"d"},
			ShowAll:  []string{"v"},
			ShowNext: []string{"n"},
			Copy:     []string{"y"},
			Edit:     []string{"e"},
			New:      []string{"o"},
			Password: []string{"p"},
			Theme:    []string{"c"},
		},
	}
}

// Session is everything a run needs once flags, environment and the config
// file have been merged.
type Session struct {
	DataPath string
	// Password is nil when the user must be prompted. An empty password
	// means the file is not encrypted.
	Password     *string
	CopyCommand  string
	PollInterval time.Duration
	LogFile      string
	// JournalPath is empty when the save journal is disabled.
	JournalPath string
	JournalKeep int
	DefaultTab  string
	Keys        Keymap
}

// Resolve merges cfg with the environment. file is the --file flag value.
func Resolve(cfg Config, file string) (Session, error) {
	s := Session{
		CopyCommand:  cfg.CopyCommand,
		PollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		LogFile:      cfg.LogFile,
		JournalKeep:  cfg.HistoryKeep,
		DefaultTab:   cfg.DefaultTab,
		Keys:         cfg.Keys,
	}
	if s.PollInterval <= 0 {
		s.PollInterval = DefaultPollInterval * time.Millisecond
	}

	path, err := dataPath(file, cfg.DataFile)
	if err != nil {
		return s, err
	}
	s.DataPath = path

	if pass, ok := os.LookupEnv(EnvPass); ok {
		s.Password = &pass
	}
	if cmd := os.Getenv(EnvCopy); cmd != "" {
		s.CopyCommand = cmd
	}
	if logFile := os.Getenv(EnvLog); logFile != "" {
		s.LogFile = logFile
	}
	if cfg.History {
		s.JournalPath = cfg.HistoryDB
		if s.JournalPath == "" {
			s.JournalPath = s.DataPath + ".history.db"
		}
	}
	return s, nil
}

func dataPath(flag, configured string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if p := os.Getenv(EnvFile); p != "" {
		return p, nil
	}
	if configured != "" {
		return configured, nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share", "passrs"), nil
	}
	return "", ErrNoDataPath
}
