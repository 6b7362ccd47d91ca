/*
Package session implements session management for the triage walker.

It loads a session's walker State, runs it through the stateless engine and
persists the result while holding a per-session lock. Locks are in-process
mutexes with reference counting, optionally backed by a distributed locker so
several replicas can share one store. Only the walker snapshot is stored;
conversation transcripts never leave the host.
*/
package session
