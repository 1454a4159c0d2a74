// Package auth is the authentication and authorization core of the 01blog
// content-sharing service: it issues signed session tokens, resolves the
// effective identity for every request from live account state, and guards
// the admin hierarchy (promote/demote/ban) against self-service abuse.
//
// Token claims identify who a caller is at issuance time; they never
// authorize anything by themselves. Every authorization decision re-reads
// the credential store, so role changes and bans take effect on the very
// next request without reissuing tokens.
package auth
