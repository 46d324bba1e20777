// ABOUTME: Embeds the chat page template into the binary using go:embed
// ABOUTME: Keeps the web chat a single-binary deployment

package webchat

import "embed"

//go:embed templates/*.html
var templateFS embed.FS
