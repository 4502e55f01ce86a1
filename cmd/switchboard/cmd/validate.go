package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config source without starting the server",
	RunE:  runValidate,
}

func init() {
	flags := validateCmd.Flags()
	flags.String("backend", "", "Config source backend: yaml, json, toml, postgres, sqlite, redis, mongodb, dynamodb (inferred from --source's extension when omitted)")
	flags.String("source", "switchboard.yaml", "Path (file backends) or DSN/address (database backends)")
	flags.String("namespace", "default", "Config namespace (database backends)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	backend, _ := flags.GetString("backend")
	location, _ := flags.GetString("source")
	namespace, _ := flags.GetString("namespace")

	src, err := buildSource(context.Background(), backend, location, namespace)
	if err != nil {
		return fmt.Errorf("build source: %w", err)
	}

	cfg, version, err := src.Load(context.Background())
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	fmt.Printf("OK: %s (%s), version=%s, routes=%d\n", src.Name(), location, version.Short(), len(cfg.Routes))
	return nil
}
