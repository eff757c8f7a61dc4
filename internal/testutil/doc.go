// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when scripting model replies and observing tool calls.
// They are not intended for production usage.
package testutil
