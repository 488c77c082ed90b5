package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RajMahato-tech/ayon-deadline/pkg/anatomy"
	"github.com/RajMahato-tech/ayon-deadline/pkg/ayon"
	"github.com/RajMahato-tech/ayon-deadline/pkg/models"
	"github.com/RajMahato-tech/ayon-deadline/pkg/publish"
)

var (
	anatomyFile  string
	settingsFile string
	pluginFile   string
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit <instances.json>",
	Short: "Submit publish jobs for completed farm renders",
	Long: `Reads one or more collected render instances from a JSON file, submits
a dependent publish job for each farm instance and writes the metadata
file the farm-side publish consumes.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&anatomyFile, "anatomy", "anatomy.yaml", "project anatomy file")
	submitCmd.Flags().StringVar(&settingsFile, "settings", "", "project settings file (optional)")
	submitCmd.Flags().StringVar(&pluginFile, "plugin-settings", "", "plugin settings file layered over the defaults (optional)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	instances, err := loadInstances(args[0])
	if err != nil {
		return err
	}

	projectAnatomy, err := anatomy.Load(anatomyFile)
	if err != nil {
		return err
	}

	settings := &ayon.ProjectSettings{}
	if settingsFile != "" {
		settings, err = ayon.LoadSettings(settingsFile)
		if err != nil {
			return err
		}
	}

	cfg := publish.DefaultConfig()
	if pluginFile != "" {
		cfg, err = publish.LoadConfig(pluginFile)
		if err != nil {
			return err
		}
	}

	tracking := ayon.NewClient(
		viper.GetString("ayon_server_url"), viper.GetString("ayon_api_key"))

	plugin := publish.NewPlugin(cfg, projectAnatomy, settings, tracking, logger)

	var failed int
	for _, inst := range instances {
		if err := plugin.Process(cmd.Context(), inst); err != nil {
			logger.Errorf("instance %q failed: %v", inst.ProductName, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d instances failed", failed, len(instances))
	}
	return nil
}

// loadInstances accepts a file holding either a single collected
// instance or a list of them.
func loadInstances(path string) ([]*models.RenderInstance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instances file: %w", err)
	}

	var instances []*models.RenderInstance
	if err := json.Unmarshal(data, &instances); err == nil {
		return instances, nil
	}

	var single models.RenderInstance
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse instances file %s: %w", path, err)
	}
	return []*models.RenderInstance{&single}, nil
}
