// Package bridge serves replay sessions to a browser over websocket. Each
// connection owns an engine and a loader; commands arrive as JSON text
// messages and every published snapshot is sent back as a frame.
package bridge
