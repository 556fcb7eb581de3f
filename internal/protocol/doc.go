// Package protocol implements the line-oriented text protocol spoken with the
// Hive match server.
//
// Every frame is a single line: a command keyword followed by space-delimited
// arguments. Nothing is escaped, so notation and chat text must not contain
// newlines.
//
// # Client commands
//
//	MOV <notation>       submit a move
//	SET <option> <bool>  request an option change
//	MSG <text>           chat
//	GLHF                 ready to start
//	FF                   forfeit
//
// # Server events
//
//	STATE <snapshot>
//	SET <option> <bool>
//	READY <uuid> <bool>
//	MSG <uuid> <text>
//	FF <uuid>
//	JOIN <uuid> / LEAVE <uuid>
//	SPECJOIN <name> / SPECLEAVE <name>
//	WINNER [<uuid>]
//	ERR <uuid|null> <code> <description...>
//
// Lines that cannot be decoded are reported as ErrUnparseable and are meant to
// be logged and dropped by the caller.
package protocol
