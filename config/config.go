package config

import (
	"fmt"
	"os"

	"github.com/gene2phenotype/g2ptools/common"
	"gopkg.in/yaml.v3"
)

// Database holds connection details for a MySQL database, either the G2P
// database itself or an Ensembl core database.
type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type API struct {
	URL string `yaml:"url"`
}

type Gemini struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
	// Max requests per minute sent to the model.
	RPM int `yaml:"rpm"`
}

type Config struct {
	G2PDatabase     Database `yaml:"g2p_database"`
	EnsemblDatabase Database `yaml:"ensembl_database"`
	API             API      `yaml:"api"`
	Gemini          Gemini   `yaml:"gemini"`
}

// Load reads a YAML config file and fills in default values.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %s", filename, err)
	}

	cfg := &Config{}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %s", filename, err)
	}

	updateDefaultValue(cfg)

	return cfg, nil
}

func updateDefaultValue(cfg *Config) {
	if cfg.G2PDatabase.Port == 0 {
		cfg.G2PDatabase.Port = 3306
	}
	if cfg.EnsemblDatabase.Port == 0 {
		cfg.EnsemblDatabase.Port = 3306
	}
	cfg.Gemini.Model = common.GetStrOr(cfg.Gemini.Model, "gemini-2.5-flash")
	if cfg.Gemini.RPM == 0 {
		cfg.Gemini.RPM = 10
	}
}

// RequireG2PDatabase returns the G2P database section or an error when the
// section is missing from the config file.
func (c *Config) RequireG2PDatabase() (Database, error) {
	if c.G2PDatabase.Host == "" || c.G2PDatabase.Name == "" {
		return Database{}, fmt.Errorf("config: g2p_database is missing from the config file")
	}
	return c.G2PDatabase, nil
}

// RequireEnsemblDatabase returns the Ensembl database section or an error when
// the section is missing from the config file.
func (c *Config) RequireEnsemblDatabase() (Database, error) {
	if c.EnsemblDatabase.Host == "" || c.EnsemblDatabase.Name == "" {
		return Database{}, fmt.Errorf("config: ensembl_database is missing from the config file")
	}
	return c.EnsemblDatabase, nil
}

// RequireGemini returns the Gemini section or an error when the API key is
// missing from the config file.
func (c *Config) RequireGemini() (Gemini, error) {
	if c.Gemini.APIKey == "" {
		return Gemini{}, fmt.Errorf("config: gemini api_key is missing from the config file")
	}
	return c.Gemini, nil
}

// RequireAPI returns the API base URL or an error when the section is missing.
func (c *Config) RequireAPI() (string, error) {
	if c.API.URL == "" {
		return "", fmt.Errorf("config: api is missing from the config file")
	}
	return c.API.URL, nil
}
