/*
Package domain contains the core models of the simplebot dialog engine.

It defines the entities exchanged between the turn router, the dialog sequencer
and the driven ports. The package is kept free of I/O and persistence concerns so
that any adapter (HTTP host, console, storage backend) can depend on it.

# Key Entities

  - Activity: an inbound event from a channel (message, conversationUpdate, ...).
  - Reply: an outbound message with text and/or attachments.
  - UserProfile: the per-user record holding the collected email.
  - DialogState: the per-conversation waterfall frame (phase, step index, pending prompt).
  - TurnResult: what the sequencer reports back to the router after a turn.
*/
package domain
