// Package http exposes the arbitration engine over a gin JSON API.
//
// Operations mirror the engine one to one:
//
//	POST /modes/change            ask for a mode, answers {"admitted": bool}
//	POST /modes/end               end a held mode, answers {"accepted": bool}
//	POST /resources/release-done  acknowledge a release request
//	POST /system/suspend          drop every holder
//	POST /system/resume           announce resume
//	GET  /state                   stacks, pending command and release ledger
//	GET  /policies                the loaded policy table
//	GET  /health                  liveness
package http
