// SPDX-License-Identifier: EPL-2.0

// Package softengine is an in-process offline mixing engine for mixer
// sessions, used by the bounce driver, the command line tool and tests.
//
// It supports only pull-based offline rendering. Fault injection hooks
// (FailEnable, FailStart, QueueStatus) let tests drive a session through
// engine failures.
package softengine
