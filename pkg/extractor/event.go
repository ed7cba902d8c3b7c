// Package extractor turns honeypot log lines into typed events using one
// regular-expression grammar per event kind.
package extractor

import "time"

// Event is a structured record extracted from a single log line.
// The concrete type identifies the grammar that produced it.
type Event interface {
	// Grammar returns the grammar that produced the event.
	Grammar() Grammar

	isEvent()
}

// FailedLogin is an SSH login attempt that was rejected.
type FailedLogin struct {
	IP string
}

// NewConnection is an inbound TCP connection accepted by the honeypot.
type NewConnection struct {
	// Timestamp is truncated to whole seconds, in UTC.
	Timestamp time.Time
	IP        string
}

// SuccessfulLogin is an SSH login attempt that was accepted.
type SuccessfulLogin struct {
	IP       string
	Username string
	Password string
}

// ClientFingerprint is the HASSH fingerprint a client presented.
type ClientFingerprint struct {
	IP          string
	Fingerprint string
}

// ShellCommand is a command typed into the emulated shell.
type ShellCommand struct {
	Command string
}

func (FailedLogin) Grammar() Grammar       { return GrammarFailedLogin }
func (NewConnection) Grammar() Grammar     { return GrammarNewConnection }
func (SuccessfulLogin) Grammar() Grammar   { return GrammarSuccessfulLogin }
func (ClientFingerprint) Grammar() Grammar { return GrammarClientFingerprint }
func (ShellCommand) Grammar() Grammar      { return GrammarShellCommand }

func (FailedLogin) isEvent()       {}
func (NewConnection) isEvent()     {}
func (SuccessfulLogin) isEvent()   {}
func (ClientFingerprint) isEvent() {}
func (ShellCommand) isEvent()      {}
