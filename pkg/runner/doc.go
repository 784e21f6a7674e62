/*
Package runner drives a bot from a terminal or any line-oriented stream.

The Console sends a conversationUpdate first (so the bot greets), then turns every
input line into a message activity and prints the replies. In JSON mode each input
line may be a full activity object and each turn's replies are written as one JSON line,
which makes the console scriptable.

# Usage

	c := runner.NewConsole(bot, os.Stdin, os.Stdout,
		runner.WithRenderer(tui.NewRenderer()),
	)
	if err := c.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
