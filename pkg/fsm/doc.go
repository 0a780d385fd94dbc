/*
Package fsm implements the table-driven finite state machine that drives
every active object's dispatch behavior.

A State carries an optional Handler (the default processor for events that
don't cause a transition), optional OnEntry/OnExit actions, and a
Transitions table. Handle searches the current state's table for the first
Transition whose Signal matches the event; the first match wins and later
duplicates are unreachable.

# Fall-through handler behavior

On a match, Handle runs, in order: OnExit(old), the transition's Action,
OnEntry(new), and then — critically — the new state's Handler with the same
event, even though the transition already consumed it. On no match, only the
current state's Handler runs. This sequence must hold exactly; it lets a
state's handler act as the default event sink for both "stayed here" and
"just arrived here" cases.

# Owner

An FSM reaches its owning object through a plain Owner field of type any,
set once at construction, rather than a typed back-pointer — no cyclic
ownership, since the FSM is just a member of the active object.
*/
package fsm
