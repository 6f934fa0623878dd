// Package subprocess implements the host boundary against local
// operating-system processes.
//
// The Host type spawns scope-checked programs with os/exec, pumps their
// stdout and stderr into lifecycle events on the caller's channel, and
// tracks live children by pid for stdin writes and kills.
package subprocess
