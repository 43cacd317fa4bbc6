// Package store declares the persistence contracts the rest of the
// application programs against: the ItemStore interface, the Querier
// abstraction over connections and transactions, the RunInTransaction
// helper, and the error taxonomy store implementations translate
// driver errors into. Concrete implementations live under
// internal/platform.
package store
