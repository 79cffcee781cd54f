// Package devmode holds the credential shared by the dev backend and clients
// started with NewWithDevMode.
package devmode

// APIKey is the session token the dev backend accepts without sign-in.
// Never configure a real backend to accept it.
const APIKey = "LOCAL_JOURNAL_DEV_SESSION"
