// Package safety provides the input validation and environment construction
// that keep cursor-agent invocations bounded to what the operator configured.
//
// cursor-mcp turns requests from a host (often itself driven by a model) into
// child processes. Every value that reaches process creation passes through
// this package first, and every check here runs before a process exists.
//
// # Threat Model
//
// T1 - Executable Substitution: a request could name an arbitrary program to
// run. ValidateExecutable accepts exactly two identities: the PATH-lookup
// sentinel "cursor-agent" and the single absolute override configured by the
// operator. Nothing else is ever handed to exec.
//
// T2 - Path Traversal: working directories and file paths come from the
// request. ValidateWorkingDirectory and ValidateFilePath clean the path
// (collapsing ".." segments) and then require it to equal the base directory
// or to start with the base directory plus a path separator. The separator
// boundary rejects siblings such as "/x/repo-evil" against "/x/repo".
//
// T3 - Credential Leakage: the child inherits nothing by default.
// BuildSafeEnvironment copies the recognized settings, a fixed list of system
// variables, and variables under three allow-listed prefixes. There is no
// deny-list; an unlisted secret cannot leak because it is never copied.
//
// T4 - Shell Injection: arguments are passed as an argv slice to exec with no
// shell in between, so metacharacters in prompts are inert.
//
// # Design Principles
//
// Fail closed on identity and containment: validation errors are returned to
// the caller and no process is created.
//
// Pure functions: validators take the base directory and override as
// arguments and keep no state.
package safety
