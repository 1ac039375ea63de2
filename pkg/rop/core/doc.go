// Package core contains pipeline plumbing: channel helpers, worker configuration via
// context, and the locomotive that drives one worker line. Package lite builds its
// Run/Turnout stages on top of it.
package core
