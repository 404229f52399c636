package commands

import (
	"os"
	"time"

	"souqscrape/lib/configutil"
	"souqscrape/lib/serviceutil"
	"souqscrape/services/pipeline"
)

// SectionConfig points one marketplace section at its Drive destination.
// Credentials are read from the named environment variable as raw
// service-account key JSON.
type SectionConfig struct {
	CredentialsEnv string `json:"credentials_env"`
	ParentFolder   string `json:"parent_folder"`
}

type MedicalConfig struct {
	SectionConfig
	LandingUrl     string   `json:"landing_url"`
	DefaultPages   int      `json:"default_pages"`
	SpecificPages  int      `json:"specific_pages"`
	SpecificBrands []string `json:"specific_brands"`
}

// PacingConfig overrides the pipeline's pacing defaults. Zero values
// keep the defaults.
type PacingConfig struct {
	ChunkSize              int   `json:"chunk_size"`
	MaxConcurrent          int64 `json:"max_concurrent"`
	PageDelaySeconds       int   `json:"page_delay_seconds"`
	ChunkDelaySeconds      int   `json:"chunk_delay_seconds"`
	LaunchStaggerSeconds   int   `json:"launch_stagger_seconds"`
	UploadRetries          int   `json:"upload_retries"`
	UploadRetryDelaySecond int   `json:"upload_retry_delay_seconds"`
}

func (p PacingConfig) options() pipeline.Options {
	return pipeline.Options{
		ChunkSize:        p.ChunkSize,
		MaxConcurrent:    p.MaxConcurrent,
		PageDelay:        time.Duration(p.PageDelaySeconds) * time.Second,
		ChunkDelay:       time.Duration(p.ChunkDelaySeconds) * time.Second,
		LaunchStagger:    time.Duration(p.LaunchStaggerSeconds) * time.Second,
		UploadRetries:    p.UploadRetries,
		UploadRetryDelay: time.Duration(p.UploadRetryDelaySecond) * time.Second,
	}
}

type DaemonConfig struct {
	// cron expression, site local time
	Schedule string `json:"schedule"`
}

type Config struct {
	BaseUrl     string        `json:"base_url"`
	StagingDir  string        `json:"staging_dir"`
	Pacing      PacingConfig  `json:"pacing"`
	Contracting SectionConfig `json:"contracting"`
	Services    SectionConfig `json:"services"`
	Medical     MedicalConfig `json:"medical"`
	Daemon      DaemonConfig  `json:"daemon"`
}

func (c Config) withDefaults() Config {
	if c.BaseUrl == "" {
		c.BaseUrl = "https://www.q84sale.com"
	}
	if c.StagingDir == "" {
		c.StagingDir = "."
	}
	if c.Contracting.CredentialsEnv == "" {
		c.Contracting.CredentialsEnv = "CONTRACTING_GCLOUD_KEY_JSON"
	}
	if c.Services.CredentialsEnv == "" {
		c.Services.CredentialsEnv = "SERVICES_GCLOUD_KEY_JSON"
	}
	if c.Services.ParentFolder == "" {
		c.Services.ParentFolder = "15Ggg_hhXLM4C4LUNiyg13IP4VRMFcjUN"
	}
	if c.Medical.CredentialsEnv == "" {
		c.Medical.CredentialsEnv = "SERVICES_GCLOUD_KEY_JSON"
	}
	if c.Medical.ParentFolder == "" {
		c.Medical.ParentFolder = "1dwoFxJ4F56HIfaUrRk3QufXDE1QlotzA"
	}
	if c.Medical.LandingUrl == "" {
		c.Medical.LandingUrl = c.BaseUrl + "/ar/services/medical-services"
	}
	if c.Medical.DefaultPages == 0 {
		c.Medical.DefaultPages = 1
	}
	if c.Medical.SpecificPages == 0 {
		c.Medical.SpecificPages = 2
	}
	if c.Medical.SpecificBrands == nil {
		c.Medical.SpecificBrands = []string{"تمريض"}
	}
	if c.Daemon.Schedule == "" {
		c.Daemon.Schedule = "0 1 * * *"
	}
	return c
}

// readConfig loads config.json5 next to the binary. A missing file is
// fine, the defaults describe the production setup.
func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg.withDefaults()
}
