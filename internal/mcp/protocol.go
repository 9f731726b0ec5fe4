package mcp

import (
	"bufio"
	"encoding/json"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

const protocolVersion = "2024-11-05"

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type JSONRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Content is one part of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is what tools/call returns: a status line followed by the
// JSON payload, both as text parts.
type ToolResult struct {
	Content []Content `json:"content"`
}

func textResult(status string, payload any) (ToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return ToolResult{}, err
	}
	return ToolResult{Content: []Content{
		{Type: "text", Text: status},
		{Type: "text", Text: string(data)},
	}}, nil
}

func writeResponse(writer *bufio.Writer, id any, result any) error {
	return writeMessage(writer, JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func writeError(writer *bufio.Writer, id any, code int, message string) error {
	return writeMessage(writer, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	})
}

func writeMessage(writer *bufio.Writer, resp JSONRPCResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := writer.Write(data); err != nil {
		return err
	}
	if err := writer.WriteByte('\n'); err != nil {
		return err
	}
	return writer.Flush()
}
