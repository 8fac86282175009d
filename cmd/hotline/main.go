// Package main is the hotline CLI: file a bug report to Linear from the
// command line, either directly with an API key or through a report
// gateway.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/hotlinehq/hotline/pkg/client"
)

// version is set at build time.
var version = "dev"

// submitTimeout bounds a single report submission.
const submitTimeout = 60 * time.Second

type cliOptions struct {
	description string
	apiKey      string
	proxyURL    string
	proxyToken  string
	teamID      string
	projectID   string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "hotline <title>",
		Short: "File a bug report to Linear",
		Long: `File a bug report to Linear, either directly with an API key or through
a report gateway that holds the key. The report description is extended
with a system info table (OS, architecture).`,
		Args:    cobra.ExactArgs(1),
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.description, "description", "d", "", "Detailed description of the bug")
	flags.StringVar(&opts.apiKey, "api-key", os.Getenv("HOTLINE_API_KEY"),
		"Linear API key (or set HOTLINE_API_KEY)")
	flags.StringVar(&opts.proxyURL, "proxy-url", os.Getenv("HOTLINE_PROXY_URL"),
		"Gateway URL to use instead of calling Linear directly (or set HOTLINE_PROXY_URL)")
	flags.StringVar(&opts.proxyToken, "proxy-token", os.Getenv("HOTLINE_PROXY_TOKEN"),
		"Bearer token for gateway authentication (or set HOTLINE_PROXY_TOKEN)")
	flags.StringVar(&opts.teamID, "team-id", os.Getenv("HOTLINE_TEAM_ID"),
		"Linear team ID, required for direct mode (or set HOTLINE_TEAM_ID)")
	flags.StringVar(&opts.projectID, "project-id", os.Getenv("HOTLINE_PROJECT_ID"),
		"Linear project ID, required for direct mode (or set HOTLINE_PROJECT_ID)")

	return cmd
}

func run(cmd *cobra.Command, title string, opts *cliOptions) error {
	systemInfo := []client.InfoField{
		{Key: "OS", Value: runtime.GOOS},
		{Key: "Arch", Value: runtime.GOARCH},
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), submitTimeout)
	defer cancel()

	url, err := createIssue(ctx, title, opts, systemInfo)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}

func createIssue(ctx context.Context, title string, opts *cliOptions, systemInfo []client.InfoField) (string, error) {
	switch {
	case opts.proxyURL != "":
		var clientOpts []client.Option
		if opts.proxyToken != "" {
			clientOpts = append(clientOpts, client.WithToken(opts.proxyToken))
		}
		c := client.NewProxy(opts.proxyURL, clientOpts...)
		return c.CreateIssue(ctx, title, opts.description, systemInfo)

	case opts.apiKey != "":
		if opts.teamID == "" {
			return "", fmt.Errorf("--team-id is required for direct mode")
		}
		if opts.projectID == "" {
			return "", fmt.Errorf("--project-id is required for direct mode")
		}
		c := client.NewDirect(opts.apiKey, opts.teamID, opts.projectID)
		return c.CreateIssue(ctx, title, opts.description, systemInfo)

	default:
		return "", fmt.Errorf("provide either --proxy-url / HOTLINE_PROXY_URL or --api-key / HOTLINE_API_KEY")
	}
}
