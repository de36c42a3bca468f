// Package logging is the ledger's ambient diagnostic logger. It is
// never on the hot path of a domain decision — every failure the core
// reports goes back to the caller as a *ledger.Error — it only
// narrates things the caller couldn't otherwise see, the way the
// teacher's demo program narrates with bare log.Println calls.
package logging

import "github.com/sirupsen/logrus"

var log = logrus.StandardLogger()

// Warnf logs a diagnostic warning. Callers never branch on whether it
// ran.
func Warnf(format string, args ...any) {
	log.Warnf(format, args...)
}
