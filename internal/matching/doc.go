// Package matching orchestrates the request/assignment workflow.
//
// Event A (a band submits a request) runs classify -> persist -> filter ->
// fan-out. Event B (a musician accepts) runs the store's atomic claim and
// echoes the result to both sides. The only hard invariant in the system is
// at-most-one acceptance per request, and it is enforced entirely by the
// store's conditional update; everything this package does around it is
// best-effort delivery and logging.
package matching
