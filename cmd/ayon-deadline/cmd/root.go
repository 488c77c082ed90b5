package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RajMahato-tech/ayon-deadline/pkg/deadline"
	"github.com/RajMahato-tech/ayon-deadline/pkg/logging"
)

var (
	cfgFile       string
	webserviceURL string
	authUser      string
	authPassword  string
	verifySSL     bool
	outputFormat  string
	logLevel      string
	logJSON       bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ayon-deadline",
	Short: "CLI for the AYON Deadline publish integration",
	Long: `ayon-deadline submits dependent publish jobs for completed farm renders
and queries the Deadline webservice for pools, groups and workers.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ayon-deadline/config)")
	rootCmd.PersistentFlags().StringVar(&webserviceURL, "webservice", "", "Deadline webservice URL (default from config or http://localhost:8082)")
	rootCmd.PersistentFlags().StringVar(&authUser, "user", "", "Deadline webservice user")
	rootCmd.PersistentFlags().StringVar(&authPassword, "password", "", "Deadline webservice password")
	rootCmd.PersistentFlags().BoolVar(&verifySSL, "verify", true, "verify the webservice TLS certificate")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".ayon-deadline")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	viper.BindEnv("webservice_url", "DEADLINE_WEBSERVICE_URL")
	viper.BindEnv("webservice_user", "DEADLINE_WEBSERVICE_USER")
	viper.BindEnv("webservice_password", "DEADLINE_WEBSERVICE_PASSWORD")
	viper.BindEnv("ayon_server_url", "AYON_SERVER_URL")
	viper.BindEnv("ayon_api_key", "AYON_API_KEY")

	viper.ReadInConfig()

	if webserviceURL == "" {
		webserviceURL = viper.GetString("webservice_url")
	}
	if authUser == "" {
		authUser = viper.GetString("webservice_user")
	}
	if authPassword == "" {
		authPassword = viper.GetString("webservice_password")
	}

	if webserviceURL == "" {
		webserviceURL = "http://localhost:8082"
	}
}

// newDeadlineClient builds the webservice client from the resolved
// configuration.
func newDeadlineClient() *deadline.Client {
	var auth *deadline.Auth
	if authUser != "" {
		auth = &deadline.Auth{Username: authUser, Password: authPassword}
	}
	return deadline.NewClient(webserviceURL, auth, verifySSL)
}

// newLogger builds the CLI logger from the global flags.
func newLogger() *logging.Logger {
	return logging.New(logging.ParseLevel(logLevel), logJSON)
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}
