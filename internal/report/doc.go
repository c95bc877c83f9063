// Package report assembles diagnostics reports. A Compiler runs an ordered
// list of Reporters, each contributing one titled Chapter, applies optional
// content Filters, and renders everything into a single self-contained HTML
// Document with an anchor-linked navigation menu.
//
// # Usage
//
//	compiler := report.NewCompiler(
//	    report.NewLogReporter(store),
//	    report.NewEnvReporter(),
//	)
//	compiler.AddFilter(redact)
//
//	doc, err := compiler.Compile()
//	if err != nil {
//	    return err
//	}
//	path, err := doc.Save(outputDir)
//
// Reporters run synchronously in the order supplied. A reporter that fails
// contributes an error chapter instead of aborting the report; a partial
// report beats no report when someone is already debugging.
package report
