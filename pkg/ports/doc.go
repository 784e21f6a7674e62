/*
Package ports defines the driven ports (interfaces) of the simplebot engine.

These interfaces decouple the dialog core from external implementations, allowing
the bot to work with various storage backends, asset sources and email providers.

# Key Interfaces

  - StateStore: persists state bags under user and conversation scope keys.
  - DistributedLocker: serializes turns of one conversation across replicas.
  - EmailSender: delivers the email triggered at the end of the dialog.
  - AssetLoader: loads the welcome card and the email template.
*/
package ports
