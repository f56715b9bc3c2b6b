// Package app contains the core application logic. It loads the catalog,
// seals the registry and runs the resolve, classes and validate operations,
// decoupled from any specific entrypoint like a CLI.
package app
