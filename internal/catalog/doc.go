// Package catalog holds the roster of expert agent personas.
//
// A catalog is built once at startup, either from a TOML seed file
// (catalog.path in the config, writable via the init command) or from
// the built-in six-agent roster, and never changes while the server
// runs. Each agent declares a specialty from the fixed Specialties set
// and carries the persona instructions that seed its system prompts.
//
// Persona instructions are server-side only; API responses expose the
// rest of the agent card but never the instructions themselves.
package catalog
