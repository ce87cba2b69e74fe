// Package stub defines the shared data model of the test double: incoming
// requests, stub rules and actions, outgoing responses, and assertions over
// the recorded request history.
package stub
