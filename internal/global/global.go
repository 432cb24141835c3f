package global

type ContextKey uint

const CancelKey ContextKey = iota
