// Command jsresolve-mcp exposes the resolution algorithm as an MCP server
// over stdio, so an editor or agent can ask "what file does this import
// resolve to" without re-implementing the algorithm.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jsresolve/jsresolve/internal/fs"
	"github.com/jsresolve/jsresolve/internal/logger"
	"github.com/jsresolve/jsresolve/internal/manifest"
	"github.com/jsresolve/jsresolve/pkg/resolver"
)

var version = "0.1.0"

// service holds the long-lived resolver shared across tool calls, so its
// manifest and idToPkg caches (spec §3) persist for the life of the MCP
// session instead of being rebuilt per request.
type service struct {
	r *resolver.Resolver
}

type resolveInput struct {
	Specifier  string   `json:"specifier" jsonschema:"the import specifier to resolve"`
	Importer   string   `json:"importer,omitempty" jsonschema:"absolute path of the file doing the importing"`
	Root       string   `json:"root" jsonschema:"the project root directory"`
	Conditions []string `json:"conditions,omitempty" jsonschema:"extra package.json exports conditions to honor"`
	SSR        bool     `json:"ssr,omitempty" jsonschema:"resolve as if for a server-side render bundle"`
	Require    bool     `json:"require,omitempty" jsonschema:"resolve as a require() call instead of an import"`
}

type resolveOutput struct {
	ID                string `json:"id"`
	External          bool   `json:"external"`
	Null              bool   `json:"null"`
	Deferred          bool   `json:"deferred"`
	ModuleSideEffects *bool  `json:"moduleSideEffects,omitempty"`
}

func (s *service) Resolve(ctx context.Context, _ *mcp.CallToolRequest, input resolveInput) (*mcp.CallToolResult, resolveOutput, error) {
	if input.Specifier == "" {
		return nil, resolveOutput{}, fmt.Errorf("specifier is required")
	}
	root := input.Root
	if root == "" {
		root = fs.RealFS().Cwd()
	}

	opts := resolver.Options{
		Root:       root,
		Conditions: input.Conditions,
		SSR:        input.SSR,
		IsRequire:  input.Require,
		AsSrc:      true,
	}

	result, err := s.r.Resolve(ctx, input.Specifier, input.Importer, opts)
	if err != nil {
		return nil, resolveOutput{}, err
	}

	return nil, resolveOutput{
		ID:                result.ID,
		External:          result.External,
		Null:              result.Null,
		Deferred:          result.Defer,
		ModuleSideEffects: result.ModuleSideEffects,
	}, nil
}

type loadInput struct {
	PackageDir string `json:"packageDir" jsonschema:"absolute directory containing the package.json to load"`
}

type loadOutput struct {
	Name        string `json:"name"`
	ModuleType  string `json:"moduleType"`
	HasExports  bool   `json:"hasExports"`
	HasBrowser  bool   `json:"hasBrowser"`
	NativeAddon bool   `json:"nativeAddon"`
}

func (s *service) Load(ctx context.Context, _ *mcp.CallToolRequest, input loadInput) (*mcp.CallToolResult, loadOutput, error) {
	if input.PackageDir == "" {
		return nil, loadOutput{}, fmt.Errorf("packageDir is required")
	}

	loader := manifest.NewLoader(fs.RealFS(), logger.NewLog(logger.LevelSilent))
	pkg, err := loader.LoadPackageData(input.PackageDir)
	if err != nil {
		return nil, loadOutput{}, err
	}

	_, hasBrowser := pkg.BrowserObject()
	if !hasBrowser {
		_, hasBrowserString := pkg.BrowserString()
		hasBrowser = hasBrowserString
	}
	_, hasExports := pkg.Exports()

	return nil, loadOutput{
		Name:        pkg.Name,
		ModuleType:  pkg.ModuleType(),
		HasExports:  hasExports,
		HasBrowser:  hasBrowser,
		NativeAddon: pkg.HasNativeBindings(),
	}, nil
}

func newServer() *mcp.Server {
	svc := &service{r: resolver.New(fs.RealFS(), logger.NewLog(logger.LevelSilent))}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "jsresolve",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve",
		Description: "Resolve a module specifier against a project, returning the file it resolves to, whether it is external, or that it defers to another resolver.",
	}, svc.Resolve)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "load",
		Description: "Load a package.json manifest and report its module type, exports/browser presence, and native-addon markers.",
	}, svc.Load)

	return server
}

func main() {
	server := newServer()
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		fmt.Fprintln(os.Stderr, "jsresolve-mcp:", err)
		os.Exit(1)
	}
}
