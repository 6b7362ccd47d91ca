/*
Package domain contains the core domain models of the triage engine.

It defines the decision tree (Nodes, Choices and Transitions), the shared
Recommendation output and the per-session walker State. This package is kept
pure and free of I/O; adapters and runtimes depend on it, never the reverse.

# Key Entities

  - Node: a question in the tree, with an ordered list of Choices.
  - Transition: what a Choice leads to. Exactly one of Next, Terminal or Close.
  - Recommendation: an optional Specialization tag plus a display message.
  - ClassifierRule: a keyword set mapped to a Recommendation, evaluated in order.
  - State: the snapshot of a guided session (current node, history).
  - Step: what the host renders after Start or Answer.
*/
package domain
