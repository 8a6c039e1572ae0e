package cli

import (
	"errors"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/marinebook/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose notebooks to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server.

Assistants can list and create notebooks, add and update cells, run code
cells and export notebooks. Notebooks are also readable as the resources
marinebook://notebooks and marinebook://notebooks/{id}.

The server speaks JSON-RPC on stdio unless --port is given, in which case
it serves the streamable HTTP transport.

Examples:
  marinebook mcp serve
  marinebook mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "marinebook": {"command": "marinebook", "args": ["mcp", "serve"]}
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP listen host")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Workspace: workspaceService,
		Storage:   storageService,
	}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.Printf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
