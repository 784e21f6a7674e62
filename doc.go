/*
Package simplebot is a small conversational bot: it greets new members, asks each user
for their email address, validates the reply and sends them an email.

The conversation core is a resumable waterfall driven by an explicit state machine
(package dialog) over scoped, typed state (package state). The Bot type wires it to a
state store, an email sender and optional content assets, and serializes turns of the
same conversation.

# Usage

	bot, err := simplebot.New(
		simplebot.WithStore(memory.NewStore()),
		simplebot.WithEmailSender(outbox.NewLogSender(logger)),
	)
	if err != nil {
		log.Fatal(err)
	}

	replies, err := bot.ProcessActivity(ctx, domain.Activity{
		Type:           domain.ActivityMessage,
		ChannelID:      "console",
		ConversationID: "c1",
		UserID:         "u1",
		Text:           "hi",
	})

Hosts are provided by package pkg/adapters/http (a chi based /api/messages endpoint)
and pkg/runner (an interactive console).
*/
package simplebot
