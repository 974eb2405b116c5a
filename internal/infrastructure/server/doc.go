// Package server wires the mode manager together: it loads the policy
// table, builds the arbitration engine, the notification pipeline and both
// transports, and runs them under one errgroup until the context ends.
//
// Example Usage:
//
//	srv, err := server.NewServer(cfg, logger)
//	if err != nil {
//		return err
//	}
//	return srv.Run(ctx)
package server
