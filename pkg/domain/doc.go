/*
Package domain contains the core domain models of the quote configurator.

It defines the answer set collected by the wizard, the identifiers of the wizard steps,
the navigation directions and the error and event types shared by the engine and its
adapters. This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - AnswerSet: the typed view of everything the user answered (location, circuit, security, contact, selected pricing).
  - Answers: a read-only, path-addressable view used by display conditions and navigation rules.
  - StepID / Direction: the states and edges of the wizard graph.
  - PricingTree: the pricing options returned by the quote API, keyed by circuit category.
*/
package domain
