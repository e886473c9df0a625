// Package core holds small numeric helpers and the framing configuration
// shared by the streaming packages.
package core
