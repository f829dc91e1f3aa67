// Package cli parses and validates command-line arguments, translating
// flags into the run configuration and the engine's parameter bag. It also
// owns process-level exit codes via ExitError.
package cli
