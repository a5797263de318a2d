package api

type contextKey int

//TransactionKey is the context key for the *Tx for a request
const TransactionKey contextKey = 0

//UserKey is the context key for the authenticated *User for a request
const UserKey contextKey = 1
