/*
Package runner supervises turtle programs.

A Runner starts the engine loop, gives each program its own turtle and runs
the programs concurrently. Aborted programs (rejected requests, malformed
colours, the engine going away) are recovered and reported instead of
crashing the host.

# Usage

	s, err := script.Load("square.yaml")
	if err != nil {
		log.Fatal(err)
	}

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithSignals(true),
	)
	report, err := r.Run(ctx, tortuga.New(tortuga.WithRenderer(canvas)), runner.FromScript(s))
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%d programs in %s", len(report.Results), report.Duration)
*/
package runner
