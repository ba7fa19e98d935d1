// Package app is the session lifecycle layer.
//
// Restorer reconciles credential records with the credential tree and reopens every
// restorable session through a bounded worker pool at startup. PairingService links new
// accounts, Lifecycle handles logout and reconnect, and EventSink applies connection
// events pushed by the supervisor. All of them share one registry.
package app
