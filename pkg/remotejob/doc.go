// Package remotejob drives long-running generative media jobs on remote
// provider APIs through one normalized lifecycle: submit the job, poll
// its status until a terminal state, then retrieve the produced
// artifacts.
//
// Provider differences (auth scheme, endpoints, status vocabulary,
// response shapes, poll cadence) live in Adapter values. The engine
// owns the lifecycle and never retries submissions: one call, one job.
//
// # Basic Usage
//
//	runner := remotejob.NewRunner()
//
//	sink := storage.Local("out/video.mp4")
//
//	res, err := runner.Run(ctx, adapter, payload, sink)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Job.ID, res.Artifacts[0].Bytes)
//
// # States
//
// Every provider status is translated through the adapter's StatusMap
// into pending, running, succeeded, failed or canceled. Raw statuses
// missing from the map are logged and treated as running; an unknown
// value can never terminate a job. Timeouts and context cancellation
// are reported through the error taxonomy, not as states.
//
// # Polling
//
// The poller queries immediately, then on a fixed interval. Transient
// status failures are logged and retried on the next tick. The
// wall-clock budget is checked on every tick; when it runs out the
// engine stops with a timeout error and the job keeps its last
// observed state.
//
// # Error Handling
//
//	res, err := runner.Run(ctx, adapter, payload, sink)
//	if err != nil {
//	    if e, ok := remotejob.AsError(err); ok {
//	        switch {
//	        case e.IsTimedOut():
//	            // Job may still finish on the provider side.
//	        case e.IsJobFailed():
//	            // e.Message carries the provider's verbatim reason.
//	        }
//	    }
//	    return err
//	}
//
// # Testing
//
// The clock and the inter-poll delay are injectable, so polling and
// token minting are deterministic under test:
//
//	runner := remotejob.NewRunner(
//	    remotejob.WithClock(clk),
//	    remotejob.WithSleeper(clk),
//	)
package remotejob
