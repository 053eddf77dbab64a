// Package environ resolves the launcher's environment-derived state:
// .env file loading, API key presence checks, and server settings.
//
// The launched API server is configured entirely through environment
// variables (API_HOST, API_PORT, API_RELOAD, OPENAI_API_KEY, ...), so
// this package is where the launcher's view of the environment is
// assembled. A project-local .env file is loaded first (via
// github.com/joho/godotenv) without overriding variables already set in
// the process, matching the precedence users expect: real environment
// beats .env file beats launcher default.
package environ
