package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a documented starter config",
	RunE:  runInit,
}

func init() {
	flags := initCmd.Flags()
	flags.String("format", "yaml", "Output format: yaml, json, toml")
	flags.String("output", "", "File to write; empty writes to stdout")
}

const starterYAML = `# switchboard starter config
defaults:
  timeout_ms: 5000
  forward_headers: true
  proxy_headers: true
  strip_hop_by_hop: true
  headers:
    add: {}
    strip: []

routes:
  - path: /widgets/:id
    methods: [GET]
    targets:
      - url: http://localhost:9001/widgets/:id
        primary: true
      - url: http://localhost:9002/widgets/:id
`

const starterJSON = `{
  "defaults": {
    "timeout_ms": 5000,
    "forward_headers": true,
    "proxy_headers": true,
    "strip_hop_by_hop": true,
    "headers": { "add": {}, "strip": [] }
  },
  "routes": [
    {
      "path": "/widgets/:id",
      "methods": ["GET"],
      "targets": [
        { "url": "http://localhost:9001/widgets/:id", "primary": true },
        { "url": "http://localhost:9002/widgets/:id" }
      ]
    }
  ]
}
`

const starterTOML = `[defaults]
timeout_ms = 5000
forward_headers = true
proxy_headers = true
strip_hop_by_hop = true

[defaults.headers]
add = {}
strip = []

[[routes]]
path = "/widgets/:id"
methods = ["GET"]

[[routes.targets]]
url = "http://localhost:9001/widgets/:id"
primary = true

[[routes.targets]]
url = "http://localhost:9002/widgets/:id"
`

func runInit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	format, _ := flags.GetString("format")
	output, _ := flags.GetString("output")

	var body string
	switch strings.ToLower(format) {
	case "yaml", "yml":
		body = starterYAML
	case "json":
		body = starterJSON
	case "toml":
		body = starterTOML
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if output == "" {
		fmt.Print(body)
		return nil
	}
	return os.WriteFile(output, []byte(body), 0o644)
}
