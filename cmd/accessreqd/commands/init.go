package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Long: `Init writes a default configuration file and bootstraps a one-time
admin account able to approve and reject requests. The admin password is
printed once and is not recoverable; reset it by editing the config file's
admin.password_hash field with a fresh bcrypt hash.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	var path string
	var err error

	if configFile := GetConfigFile(); configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		path = configFile
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nConfiguration written to %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Review and edit the configuration (directory, workflow executor, csv output dir)")
	fmt.Println("  2. Run 'accessreqd migrate' to initialize the database schema")
	fmt.Println("  3. Run 'accessreqd start' to launch the engine")
	fmt.Println("\nSecurity note: the JWT signing secret lives in controlplane.jwt.secret.")
	fmt.Println("Override it in production via the ACCESSREQ_CONTROLPLANE_JWT_SECRET environment")
	fmt.Println("variable rather than committing the generated value to version control.")
	return nil
}
