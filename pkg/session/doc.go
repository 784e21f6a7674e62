/*
Package session serializes turns and gives administrative access to stored state.

Two activities of the same conversation must not run their turns concurrently, or the
second turn would read a dialog state the first one is about to overwrite. The Manager
holds an in-process mutex per key and, when a ports.DistributedLocker is configured,
a lock shared by every replica.
*/
package session
