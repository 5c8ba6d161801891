package mcp

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fujilab/surveyscan/internal/config"
	"github.com/fujilab/surveyscan/internal/descriptions"
	"github.com/fujilab/surveyscan/internal/form"
	"github.com/fujilab/surveyscan/internal/raster"
	"github.com/fujilab/surveyscan/internal/schema"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *form.Service
	set       *schema.Set
	rules     []schema.ValidationRule
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, svc *form.Service, set *schema.Set, rules []schema.ValidationRule) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("extraction service cannot be nil")
	}
	if set == nil {
		return nil, fmt.Errorf("form schema cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		service:   svc,
		set:       set,
		rules:     rules,
		mcpServer: mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	processFileTool := mcp.NewTool(
		"survey_process_file",
		mcp.WithDescription(descriptions.GetToolDescription("survey_process_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the scanned survey (PDF, PNG, or JPEG)"),
		),
	)
	s.mcpServer.AddTool(processFileTool, s.handleProcessFile)

	scanDirectoryTool := mcp.NewTool(
		"survey_scan_directory",
		mcp.WithDescription(descriptions.GetToolDescription("survey_scan_directory")),
		mcp.WithString("directory",
			mcp.Description("Directory path to scan (uses default if empty)"),
		),
	)
	s.mcpServer.AddTool(scanDirectoryTool, s.handleScanDirectory)

	schemaInfoTool := mcp.NewTool(
		"survey_schema_info",
		mcp.WithDescription(descriptions.GetToolDescription("survey_schema_info")),
		mcp.WithString("field",
			mcp.Description("Optional field name to describe in detail"),
		),
	)
	s.mcpServer.AddTool(schemaInfoTool, s.handleSchemaInfo)

	serverInfoTool := mcp.NewTool(
		"survey_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("survey_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleProcessFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	img, err := raster.Load(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.Extract(ctx, img, s.set, s.rules)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatExtractResult(path, result)), nil
}

func (s *Server) handleScanDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	directory := s.config.ScanDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	paths, err := raster.ScanDirectory(directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No survey documents found in directory: %s", directory)), nil
	}

	return mcp.NewToolResultText(s.formatScanDirectoryResult(directory, paths)), nil
}

func (s *Server) handleSchemaInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if name, ok := args["field"].(string); ok && name != "" {
		field, found := s.set.Field(name)
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("unknown field: %s", name)), nil
		}
		return mcp.NewToolResultText(s.formatFieldDetail(field)), nil
	}

	return mcp.NewToolResultText(s.formatSchemaOverview()), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

// Formatting methods
func (s *Server) formatExtractResult(path string, result *form.ExtractResult) string {
	text := fmt.Sprintf("Processed survey: %s\n", path)
	text += fmt.Sprintf("Skew correction: %.2f degrees\n", result.SkewAngle)
	text += fmt.Sprintf("Fields detected: %d\n", len(result.Results))

	names := make([]string, 0, len(result.Results))
	for name := range result.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	text += "\nFields:\n"
	for _, name := range names {
		r := result.Results[name]
		display := "(empty)"
		if r.Value != nil {
			display = r.Value.Display()
		}
		text += fmt.Sprintf("  %s: %s [%s]", name, display, r.Confidence)
		if r.FillRatio > 0 {
			text += fmt.Sprintf(" (fill %.3f)", r.FillRatio)
		}
		text += "\n"
	}

	if len(result.SkippedFields) > 0 {
		text += "\nSkipped fields:\n"
		skipped := make([]string, 0, len(result.SkippedFields))
		for name := range result.SkippedFields {
			skipped = append(skipped, name)
		}
		sort.Strings(skipped)
		for _, name := range skipped {
			text += fmt.Sprintf("  %s: %s\n", name, result.SkippedFields[name])
		}
	}

	if len(result.Findings) > 0 {
		text += "\nConsistency findings:\n"
		for _, f := range result.Findings {
			text += fmt.Sprintf("  [%s] %s: %s (fields: %v)\n", f.Severity, f.RuleID, f.Message, f.Fields)
		}
	} else {
		text += "\nNo consistency findings.\n"
	}

	return text
}

func (s *Server) formatScanDirectoryResult(directory string, paths []string) string {
	text := fmt.Sprintf("Found %d survey document(s) in directory: %s\n\nFiles:\n", len(paths), directory)

	for i, path := range paths {
		text += fmt.Sprintf("%d. %s\n", i+1, filepath.Base(path))
		info, err := raster.Stat(path)
		if err != nil {
			text += fmt.Sprintf("   Error: %v\n", err)
			continue
		}
		text += fmt.Sprintf("   Path: %s\n", info.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", info.SizeBytes)
		if info.IsPDF {
			text += fmt.Sprintf("   Pages: %d\n", info.PageCount)
		}
		if i < len(paths)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatSchemaOverview() string {
	text := fmt.Sprintf("Form layout: %d fields\n\nFields:\n", s.set.Len())
	for _, field := range s.set.Fields() {
		text += fmt.Sprintf("  %s (%s)", field.Name, field.Type)
		if len(field.Options) > 0 {
			text += fmt.Sprintf(" options=%v", field.Options)
		}
		if field.Threshold > 0 {
			text += fmt.Sprintf(" threshold=%.2f", field.Threshold)
		}
		text += "\n"
	}

	text += fmt.Sprintf("\nConsistency rules: %d\n", len(s.rules))
	for _, rule := range s.rules {
		text += fmt.Sprintf("  %s: trigger=%s companions=%v severity=%s\n",
			rule.ID, rule.Trigger, rule.Companions, rule.Severity)
	}
	return text
}

func (s *Server) formatFieldDetail(field schema.FieldSchema) string {
	text := fmt.Sprintf("Field: %s\n", field.Name)
	text += fmt.Sprintf("Type: %s\n", field.Type)
	text += fmt.Sprintf("Region: x=%.4f y=%.4f w=%.4f h=%.4f (page fractions)\n",
		field.Geometry.X, field.Geometry.Y, field.Geometry.Width, field.Geometry.Height)
	if len(field.Options) > 0 {
		text += fmt.Sprintf("Options: %v\n", field.Options)
	}
	if field.Threshold > 0 {
		text += fmt.Sprintf("Threshold: %.2f\n", field.Threshold)
	} else if field.Type.IsChoice() || field.Type == schema.FieldTypeSingleCheckbox {
		text += "Threshold: engine default\n"
	}
	if field.Description != "" {
		text += fmt.Sprintf("Description: %s\n", field.Description)
	}
	return text
}

func (s *Server) formatServerInfo() string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Scan Directory: %s\n", s.config.ScanDirectory)
	text += fmt.Sprintf("📂 Output Directory: %s\n", s.config.OutputDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	if s.config.RecognizerEnabled() {
		text += "✍️  Handwriting recognition: enabled (Document AI)\n"
	} else {
		text += "✍️  Handwriting recognition: disabled (free-text fields return empty, low confidence)\n"
	}
	text += fmt.Sprintf("🗂️  Form layout: %d fields, %d consistency rules\n\n", s.set.Len(), len(s.rules))

	// Directory contents
	paths, err := raster.ScanDirectory(s.config.ScanDirectory)
	if err == nil && len(paths) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d documents found):\n", len(paths))
		for i, path := range paths {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(paths)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s\n", i+1, filepath.Base(path))
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No survey documents found in scan directory\n\n"
	}

	// Available tools
	text += "🛠️  Available Tools:\n"
	names := descriptions.GetAllToolNames()
	sort.Strings(names)
	for _, name := range names {
		text += fmt.Sprintf("  • %s\n", name)
	}

	text += "\nSupported document formats:\n"
	for _, ext := range raster.SupportedExtensions {
		text += fmt.Sprintf("  • %s\n", ext)
	}

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	} else {
		return s.runStdioMode(ctx)
	}
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting survey MCP server in stdio mode")
		log.Printf("Scan directory: %s", s.config.ScanDirectory)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// For now, we'll just use stdio mode since the mark3labs library
	// handles the transport differently
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
