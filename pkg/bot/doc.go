// Package bot holds the conversation logic: the email waterfall and the turn router that
// decides, for each inbound activity, whether to greet, start the dialog or continue it.
package bot
