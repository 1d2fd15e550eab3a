package db

// Timestamps are stored as sortable text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// defaultHistoryLimit caps ListBatches when no limit is given.
const defaultHistoryLimit = 20
