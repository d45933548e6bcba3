package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/sih-tools/evalportal/internal/problems"
)

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL          string `toml:"redis_url"`
		TokenHeader       string `toml:"token_header"`
		SessionTTLMinutes int    `toml:"session_ttl_minutes"`
		MaxLoginFailures  int    `toml:"max_login_failures"`
		LockoutMinutes    int    `toml:"lockout_minutes"`
	} `toml:"auth"`

	Admin struct {
		Username     string `toml:"username"`
		PasswordHash string `toml:"password_hash"`
	} `toml:"admin"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Problems problems.Catalog `toml:"problems"`

	Submissions struct {
		MaxPerTeam    int `toml:"max_per_team"`
		MaxAutoJuries int `toml:"max_auto_juries"`
	} `toml:"submissions"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :4000")
	}

	if config.Problems.Prefix == "" {
		config.Problems = *problems.DefaultCatalog()
	}
	if config.Submissions.MaxPerTeam == 0 {
		config.Submissions.MaxPerTeam = 2
	}
	if config.Submissions.MaxAutoJuries == 0 {
		config.Submissions.MaxAutoJuries = 3
	}

	logger.Debug.Printf("Loaded problem catalog: %+v", config.Problems)

	return &config, nil
}
