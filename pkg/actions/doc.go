// Package actions talks to the GitHub Actions runner that hosts setup-pdm.
//
// The runner is driven through two channels:
//
//   - Workflow commands printed to stdout (::debug::, ::error::,
//     ::add-matcher::, ::add-mask::).
//   - File commands appended to the files named by GITHUB_ENV, GITHUB_PATH,
//     GITHUB_OUTPUT and GITHUB_STATE, using the heredoc format with a random
//     delimiter.
//
// Every environment change is also applied to the current process, so code
// that runs later in the same step sees the same values as later steps in
// the job. When the file variables are unset (running outside a runner) the
// process environment is the only target and outputs are printed as
// name=value lines.
//
// [Inputs] reads the action's inputs from INPUT_* variables through viper,
// letting command-line flags of the same name take precedence.
package actions
