// Package recommend ranks open tasks for a user.
//
// Three independent signals are scored for every active task:
//
//   - interest: the fraction of the task's property tags the user declared
//     interest in
//   - history: mean description similarity to the tasks the user completed
//   - behavior: mean description similarity to the tasks the user liked
//
// Interest scores are max-normalized and history/behavior scores are
// z-scored across the candidate set, then summed. The result is a total
// order over all active tasks: nothing is filtered out, and equal totals
// fall back to task ID ascending.
//
// A ranking call is computed from a fresh store snapshot and keeps no state
// between calls. Pairwise similarity work within one call runs on a bounded
// worker pool.
package recommend
