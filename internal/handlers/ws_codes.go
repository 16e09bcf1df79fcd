// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the state stream.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	NoProviderError     = 3001 // No active friends provider for the connection.
)
