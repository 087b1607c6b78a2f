package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	appErrors "tenant-reports/pkg/errors"
)

type Config struct {
	Environment string
	Graph       GraphConfig
	Report      ReportConfig
	Licensing   LicensingConfig
	Launcher    LauncherConfig
}

type GraphConfig struct {
	TenantID     string `validate:"required"`
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	BaseURL      string
}

type ReportConfig struct {
	OutputDir         string `validate:"required"`
	CSVExport         bool
	TopN              int `validate:"gt=1"`
	PageSize          int `validate:"gt=0,lte=999"`
	MaxRecords        int `validate:"gte=0"`
	OSFilter          []string
	OSSheets          []string
	HistoryWindowDays int `validate:"gt=0"`
}

type LicensingConfig struct {
	// SKUNames maps SKU GUIDs to the display names used in the report.
	SKUNames map[string]string
	// Groups maps a group name to the SKU GUIDs it contains. The tracked
	// set is the union of all groups.
	Groups map[string][]string
}

type LauncherConfig struct {
	Addr         string
	ScriptsDir   string
	PollInterval time.Duration `validate:"gt=0"`
}

// Well-known license SKU GUIDs used as group defaults. Overridable via
// the licensing.groups and licensing.sku_names config sections.
const (
	SKUMicrosoft365E5 = "06ebc4ee-1bb5-47dd-8120-7fa54034141e"
	SKUMicrosoft365E3 = "05e9a617-0261-4cee-bb44-138d3ef5d965"
	SKUOffice365E5    = "c7df2760-2c81-4ef7-b578-5b5392b571df"
	SKUOffice365E3    = "6fd2c87f-b296-42f0-b197-1e91e994b900"
	SKUMicrosoft365F3 = "66b55226-6b4f-492c-910c-a3b7a3c9d993"
)

// GroupPremium, GroupF3 and GroupF3Allowed are the group names the default
// license rules refer to.
const (
	GroupPremium   = "premium"
	GroupF3        = "f3"
	GroupF3Allowed = "f3-allowed"
)

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "development")

	viper.SetDefault("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0")

	viper.SetDefault("REPORT_OUTPUT_DIR", "reports")
	viper.SetDefault("REPORT_CSV_EXPORT", false)
	viper.SetDefault("REPORT_TOP_N", 10)
	viper.SetDefault("REPORT_PAGE_SIZE", 200)
	viper.SetDefault("REPORT_MAX_RECORDS", 0)
	viper.SetDefault("REPORT_OS_SHEETS", []string{"Windows", "Android", "iOS", "macOS"})
	viper.SetDefault("REPORT_HISTORY_WINDOW_DAYS", 30)

	viper.SetDefault("LAUNCHER_ADDR", "127.0.0.1:8765")
	viper.SetDefault("LAUNCHER_SCRIPTS_DIR", ".")
	viper.SetDefault("LAUNCHER_POLL_INTERVAL", "2s")

	viper.SetDefault("LICENSING_SKU_NAMES", map[string]string{
		SKUMicrosoft365E5: "Microsoft 365 E5",
		SKUMicrosoft365E3: "Microsoft 365 E3",
		SKUOffice365E5:    "Office 365 E5",
		SKUOffice365E3:    "Office 365 E3",
		SKUMicrosoft365F3: "Microsoft 365 F3",
	})
	viper.SetDefault("LICENSING_GROUPS", map[string][]string{
		GroupPremium:   {SKUMicrosoft365E5, SKUMicrosoft365E3, SKUOffice365E5, SKUOffice365E3},
		GroupF3:        {SKUMicrosoft365F3},
		GroupF3Allowed: {SKUOffice365E3},
	})
}

// Load reads configuration from the optional .env file, the environment and
// the given command-line flags, in ascending precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !os.IsNotExist(err) {
			return nil, appErrors.NewConfigError("failed to read config", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	if flags != nil {
		if err := viper.BindPFlags(flags); err != nil {
			return nil, appErrors.NewConfigError("failed to bind flags", err)
		}
	}

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Graph: GraphConfig{
			TenantID:     viper.GetString("GRAPH_TENANT_ID"),
			ClientID:     viper.GetString("GRAPH_CLIENT_ID"),
			ClientSecret: viper.GetString("GRAPH_CLIENT_SECRET"),
			BaseURL:      viper.GetString("GRAPH_BASE_URL"),
		},
		Report: ReportConfig{
			OutputDir:         viper.GetString("REPORT_OUTPUT_DIR"),
			CSVExport:         viper.GetBool("REPORT_CSV_EXPORT"),
			TopN:              viper.GetInt("REPORT_TOP_N"),
			PageSize:          viper.GetInt("REPORT_PAGE_SIZE"),
			MaxRecords:        viper.GetInt("REPORT_MAX_RECORDS"),
			OSFilter:          viper.GetStringSlice("REPORT_OS_FILTER"),
			OSSheets:          viper.GetStringSlice("REPORT_OS_SHEETS"),
			HistoryWindowDays: viper.GetInt("REPORT_HISTORY_WINDOW_DAYS"),
		},
		Licensing: LicensingConfig{
			SKUNames: viper.GetStringMapString("LICENSING_SKU_NAMES"),
			Groups:   viper.GetStringMapStringSlice("LICENSING_GROUPS"),
		},
		Launcher: LauncherConfig{
			Addr:         viper.GetString("LAUNCHER_ADDR"),
			ScriptsDir:   viper.GetString("LAUNCHER_SCRIPTS_DIR"),
			PollInterval: viper.GetDuration("LAUNCHER_POLL_INTERVAL"),
		},
	}

	if err := validate.StructExcept(config, "Graph"); err != nil {
		return nil, appErrors.NewConfigError("invalid configuration", err)
	}

	return config, nil
}

var validate = validator.New()

// ValidateSource checks the credentials required by the report binaries.
// The launcher never talks to the directory API and skips this.
func (c *Config) ValidateSource() error {
	if err := validate.Struct(c.Graph); err != nil {
		return fmt.Errorf("graph credentials missing: set GRAPH_TENANT_ID, GRAPH_CLIENT_ID and GRAPH_CLIENT_SECRET: %w", err)
	}
	return nil
}
