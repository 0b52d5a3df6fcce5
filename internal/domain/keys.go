package domain

// KeyPrefix namespaces every key tabdex writes to a shared key-value store.
const KeyPrefix = "tabdex:"
