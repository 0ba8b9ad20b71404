// Package application wires the daemon together: it loads the properties
// snapshot once at startup, then builds the lookup handler, router and HTTP
// server around it, keeping the main package focused on CLI parsing and
// orchestration.
package application
