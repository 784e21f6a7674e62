/*
Package dialog implements a resumable waterfall sequencer.

A Waterfall is an ordered list of named steps. Each step either advances to the next
step in the same turn, suspends on a TextPrompt until the next user reply, or ends the
run. The run is persisted in the conversation's DialogState, so a suspended waterfall
resumes on whichever process receives the next activity.

Runs move through an explicit finite-state machine:

	idle --begin--> running --advance--> running
	running --suspend--> waiting --resume--> running
	waiting --reject--> waiting
	running --finish--> complete --end--> idle
	running|waiting|complete --cancel--> idle

Any other move is rejected with domain.ErrInvalidTransition.
*/
package dialog
