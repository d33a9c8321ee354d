// Command kg is the CLI adapter (spec.md §4.15) over the knowledge graph
// core: documents, tags, links, analyzers, topic clustering, and the wiki
// synthesis pipeline. It follows the teacher's cmd/bd layout - one file per
// command group under package main, wired together by a single rootCmd in
// root.go - but dispatches through cobra's RunE/error return instead of the
// teacher's direct os.Exit calls, so every command funnels through a single
// exit-code mapping (internal/kgerr.ExitCode).
package main

import "os"

func main() {
	os.Exit(Execute())
}
