package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// secretKeys are redacted wherever the configuration is written.
var secretKeys = []string{"aws.secretkey"}

var writeConfigCmd = &cobra.Command{
	Use:   "write-config",
	Short: "Write the effective configuration as YAML",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		outFile := cmd.Flag("output").Value.String()

		settings := viper.AllSettings()
		for _, k := range secretKeys {
			redact(settings, k)
		}

		yamlSettings, err := yaml.Marshal(settings)
		if err != nil {
			fail(cmd, err)
			return
		}

		if outFile == "" {
			fmt.Fprint(cmd.OutOrStdout(), string(yamlSettings))
			return
		}

		if err := writeNewFile(outFile, yamlSettings); err != nil {
			fail(cmd, err)
		}
	},
}

// writeNewFile writes data to a file that must not exist yet.
func writeNewFile(name string, data []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("config file %s already exists", name)
		}
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func init() {
	rootCmd.AddCommand(writeConfigCmd)

	writeConfigCmd.Flags().StringP("output", "o", "", "YAML file to write config to, must not exist (default is stdout)")
}

// redact replaces a non-empty nested value, addressed by its dotted
// lower-case viper key, with asterisks.
func redact(settings map[string]interface{}, key string) {
	path := strings.Split(key, ".")
	section := settings

	for _, p := range path[:len(path)-1] {
		next, ok := section[p].(map[string]interface{})
		if !ok {
			return
		}
		section = next
	}

	name := path[len(path)-1]
	if v, ok := section[name]; ok && fmt.Sprint(v) != "" {
		section[name] = "********"
	}
}
