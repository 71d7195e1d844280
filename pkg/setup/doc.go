// Package setup provisions PDM inside a CI job.
//
// An [Orchestrator] runs one installation through a fixed sequence of
// stages:
//
//	Idle → ResolvingRuntime → Invoking → ParsingResult → Wiring → Caching → Done
//
// Any stage may fail, which moves the run to Failed and stops it. The
// installer's result file is removed on every path.
//
// # Usage
//
//	o := setup.New(cfg, setup.Deps{
//	    Finder:     pyruntime.NewFinder(cfg.Variant, host, logger),
//	    Fetcher:    fetch.NewClient(nil),
//	    Runner:     installer.NewRunner(cfg.Variant, host, logger),
//	    Host:       host,
//	    Dispatcher: dispatcher,
//	    Logger:     logger,
//	})
//	result, err := o.Run(ctx)
//
// Environment wiring is split into [PlanWiring], which is pure and may fail,
// and [Wiring.Apply], which performs the host effects. A run that fails
// before Apply publishes no outputs.
package setup
