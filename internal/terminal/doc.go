// Package terminal renders a conversation on a line-oriented terminal.
//
// Each input line replaces the draft and is sent when no request is pending.
// Lines typed while the assistant is replying only update the draft; an
// empty line sends it afterwards. Slash commands (/help, /history, /draft,
// /quit) are handled locally.
package terminal
