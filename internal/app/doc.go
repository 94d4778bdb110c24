// Package app wires the components of a batch run together.
//
// An Application owns the loaded configuration, the logger, the
// OpenTelemetry providers and the run id. The commands build one, call
// RunTickers or RunIngest, and Shutdown it so metrics get pushed.
//
// # Usage
//
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    os.Exit(app.ExitCode(err))
//	}
//	defer application.Shutdown(context.Background())
//	_, err = application.RunIngest(ctx, app.IngestOptions{})
//
// # Error Handling
//
// Errors are returned to the caller; ExitCode maps them to process exit
// codes. The app does not call os.Exit() directly.
package app
