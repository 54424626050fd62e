// Package scheduler runs the periodic work loops that drive Homewatch Core.
//
// This package manages:
//   - Fixed-interval task loops (telemetry polling, control evaluation)
//   - Graceful shutdown that lets in-flight cycles finish
//   - Loop lifecycle status and statistics
//   - Supervision: an unexpected loop death shuts the process down
//
// Error Handling:
//   - A task error fails that cycle only; the loop keeps ticking
//   - A task panic is recovered, marks the loop failed, and is reported
//     to the supervisor as fatal
//
// Usage:
//
//	sup := scheduler.NewSupervisor()
//	sup.Add(scheduler.Config{
//	    Name:     "ingest",
//	    Interval: 60 * time.Second,
//	    Task:     ingestService.Cycle,
//	})
//	if err := sup.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package scheduler
