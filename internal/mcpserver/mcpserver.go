// Package mcpserver exposes translation and syntax validation as Model
// Context Protocol tools, so coding agents can call codeswitch over stdio.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/message"
	"github.com/nadzzz/codeswitch/internal/transport"
)

// Server wraps a transport.Service as an MCP tool server.
type Server struct {
	svc    transport.Service
	log    *zap.SugaredLogger
	server *server.MCPServer
}

// New creates an MCP server and registers its tools.
func New(svc transport.Service, version string, log *zap.SugaredLogger) *Server {
	s := &Server{
		svc: svc,
		log: log.With(logger.FieldTransport, "mcp"),
		server: server.NewMCPServer(
			"codeswitch",
			version,
			server.WithToolCapabilities(true),
		),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	translateTool := mcp.NewTool("translate_code",
		mcp.WithDescription("Translate a Java program to C or a C program to Java"),
		mcp.WithString("source_code",
			mcp.Required(),
			mcp.Description("Program text to translate"),
		),
		mcp.WithString("source_language",
			mcp.Required(),
			mcp.Description("Language of source_code: java or c"),
		),
		mcp.WithString("target_language",
			mcp.Required(),
			mcp.Description("Language to translate into: java or c"),
		),
		mcp.WithBoolean("validate_syntax",
			mcp.Description("Check syntax of the input and the output (default: true)"),
		),
	)
	s.server.AddTool(translateTool, s.handleTranslate)

	validateTool := mcp.NewTool("validate_syntax",
		mcp.WithDescription("Check Java or C source for syntax errors with the language toolchain"),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Program text to check"),
		),
		mcp.WithString("language",
			mcp.Required(),
			mcp.Description("java or c"),
		),
	)
	s.server.AddTool(validateTool, s.handleValidate)

	statusTool := mcp.NewTool("translation_status",
		mcp.WithDescription("Report whether the translation backend and OCR engine are available"),
	)
	s.server.AddTool(statusTool, s.handleStatus)
}

// handleTranslate handles translate_code tool calls. A failed translation is
// an error result carrying the pipeline message.
func (s *Server) handleTranslate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("source_code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := request.RequireString("source_language")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := request.RequireString("target_language")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := s.svc.Translate(ctx, message.TranslationRequest{
		SourceCode:     code,
		SourceLanguage: from,
		TargetLanguage: to,
		ValidateSyntax: request.GetBool("validate_syntax", true),
	})
	s.log.Debugw("translate_code",
		logger.FieldRequestID, res.RequestID,
		logger.FieldStatus, res.Success)

	if !res.Success {
		return mcp.NewToolResultError(res.Message), nil
	}
	return jsonResult(res)
}

// handleValidate handles validate_syntax tool calls.
func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lang, err := request.RequireString("language")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.svc.Validate(ctx, code, lang)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(out)
}

func (s *Server) handleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Status(ctx))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Serve runs the server over stdin/stdout until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.server)
}
