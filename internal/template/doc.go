// Package template resolves manifest location templates into concrete
// directories and glob patterns. All functions are pure string operations;
// no filesystem access happens here.
package template
