// Package cli provides the interactive kbloader shell.
//
// It wires configuration, environment profiles, the entry catalog, the upload
// orchestrator and the optional upload history into a small REPL:
//
//	load <zip>        open an archive and fingerprint its files
//	list [all]        show the loaded files and their upload status
//	noise on|off      show or hide platform system files
//	env [name]        show or switch the active environment profile
//	user <id>         set the uploading user id
//	parent <id>       set the target folder id
//	upload            publish every pending PDF
//	history [n|clear] show (or clear) the upload history
//	history <md5>     show every upload of one file
//	exit | quit       leave the program
//
// The REPL is started via App.Run, which blocks until the user exits or
// input ends.
package cli
