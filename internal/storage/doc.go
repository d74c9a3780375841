package storage

// Package storage provides an optional delivery journal.
//
// Every send attempt (success or failure) can be recorded so operators can
// answer "did that alert actually go out?". It is off unless configured.
