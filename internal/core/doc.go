// Package core provides the foundational value types for the gambit engine.
//
// This package contains type definitions only. All other internal packages
// import core; core imports nothing internal. This keeps the event vocabulary
// and the capability contracts at the bottom of the dependency graph with no
// circular dependencies.
//
// Key design constraints:
//   - Events are immutable once stamped; listeners replace, never mutate
//   - Extension points are declared capabilities, never runtime type probing
//   - Logical sequence numbers only, never wall-clock timestamps
//   - No floats in canonical payloads
package core
